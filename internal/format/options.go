package format

// MappingFormat controls how mapping and array literals are laid out.
type MappingFormat string

const (
	MappingCompact  MappingFormat = "compact"
	MappingExpanded MappingFormat = "expanded"
	MappingAuto     MappingFormat = "auto"
)

// CaseAlignment controls where case labels sit relative to their switch.
type CaseAlignment string

const (
	CaseIndent CaseAlignment = "indent"
	CaseAlign  CaseAlignment = "align"
)

// IncludeSorting controls reordering of consecutive #include lines.
type IncludeSorting string

const (
	IncludeKeep        IncludeSorting = "none"
	IncludeAlphabetic  IncludeSorting = "alphabetical"
	IncludeSystemFirst IncludeSorting = "system-first"
)

// InheritStyle controls the spacing of adjacent top-level inherit lines:
// auto keeps the source's blank lines, single-line puts them on consecutive
// lines, grouped also leaves exactly one blank line after the run.
type InheritStyle string

const (
	InheritAuto       InheritStyle = "auto"
	InheritSingleLine InheritStyle = "single-line"
	InheritGrouped    InheritStyle = "grouped"
)

// StarPosition controls spacing around the '*' of array types.
type StarPosition string

const (
	StarBefore StarPosition = "before"
	StarAfter  StarPosition = "after"
	StarBoth   StarPosition = "both"
)

// Options is the user-facing formatting configuration. Field names are part of
// the result cache key, so the JSON tags must stay stable.
type Options struct {
	IndentSize                     int            `json:"indentSize" yaml:"indent_size" toml:"indent_size" validate:"gte=1,lte=16"`
	TabSize                        int            `json:"tabSize" yaml:"tab_size" toml:"tab_size" validate:"gte=1,lte=16"`
	InsertSpaces                   bool           `json:"insertSpaces" yaml:"insert_spaces" toml:"insert_spaces"`
	MaxLineLength                  int            `json:"maxLineLength" yaml:"max_line_length" toml:"max_line_length" validate:"gte=20,lte=1000"`
	InsertFinalNewline             bool           `json:"insertFinalNewline" yaml:"insert_final_newline" toml:"insert_final_newline"`
	TrimTrailingWhitespace         bool           `json:"trimTrailingWhitespace" yaml:"trim_trailing_whitespace" toml:"trim_trailing_whitespace"`
	BracesOnNewLine                bool           `json:"bracesOnNewLine" yaml:"braces_on_new_line" toml:"braces_on_new_line"`
	SpaceBeforeOpenParen           bool           `json:"spaceBeforeOpenParen" yaml:"space_before_open_paren" toml:"space_before_open_paren"`
	SpaceAroundOperators           bool           `json:"spaceAroundOperators" yaml:"space_around_operators" toml:"space_around_operators"`
	SpaceAroundBinaryOperators     bool           `json:"spaceAroundBinaryOperators" yaml:"space_around_binary_operators" toml:"space_around_binary_operators"`
	SpaceAroundAssignmentOperators bool           `json:"spaceAroundAssignmentOperators" yaml:"space_around_assignment_operators" toml:"space_around_assignment_operators"`
	SpaceAfterComma                bool           `json:"spaceAfterComma" yaml:"space_after_comma" toml:"space_after_comma"`
	SpaceAfterSemicolon            bool           `json:"spaceAfterSemicolon" yaml:"space_after_semicolon" toml:"space_after_semicolon"`
	MaxEmptyLines                  int            `json:"maxEmptyLines" yaml:"max_empty_lines" toml:"max_empty_lines" validate:"gte=0,lte=10"`
	InsertSpaceAfterKeywords       bool           `json:"insertSpaceAfterKeywords" yaml:"insert_space_after_keywords" toml:"insert_space_after_keywords"`
	IncludeStatementSorting        IncludeSorting `json:"includeStatementSorting" yaml:"include_statement_sorting" toml:"include_statement_sorting" validate:"omitempty,oneof=none alphabetical system-first"`
	InheritanceStatementStyle      InheritStyle   `json:"inheritanceStatementStyle" yaml:"inheritance_statement_style" toml:"inheritance_statement_style" validate:"omitempty,oneof=auto single-line grouped"`
	MappingLiteralFormat           MappingFormat  `json:"mappingLiteralFormat" yaml:"mapping_literal_format" toml:"mapping_literal_format" validate:"omitempty,oneof=compact expanded auto"`
	ArrayOfMappingFormat           MappingFormat  `json:"arrayOfMappingFormat" yaml:"array_of_mapping_format" toml:"array_of_mapping_format" validate:"omitempty,oneof=compact expanded auto"`
	ArrayLiteralWrapThreshold      int            `json:"arrayLiteralWrapThreshold" yaml:"array_literal_wrap_threshold" toml:"array_literal_wrap_threshold" validate:"gte=0"`
	ParameterWrapThreshold         int            `json:"parameterWrapThreshold" yaml:"parameter_wrap_threshold" toml:"parameter_wrap_threshold" validate:"gte=0"`
	FunctionModifierOrder          []string       `json:"functionModifierOrder" yaml:"function_modifier_order" toml:"function_modifier_order"`
	SwitchCaseAlignment            CaseAlignment  `json:"switchCaseAlignment" yaml:"switch_case_alignment" toml:"switch_case_alignment" validate:"omitempty,oneof=indent align"`
	SpaceAfterTypeBeforeStar       bool           `json:"spaceAfterTypeBeforeStar" yaml:"space_after_type_before_star" toml:"space_after_type_before_star"`
	StarSpacePosition              StarPosition   `json:"starSpacePosition" yaml:"star_space_position" toml:"star_space_position" validate:"omitempty,oneof=before after both"`
	NestedStructureIndent          int            `json:"nestedStructureIndent" yaml:"nested_structure_indent" toml:"nested_structure_indent" validate:"gte=0,lte=16"`
	MaxNodeCount                   int            `json:"maxNodeCount" yaml:"max_node_count" toml:"max_node_count" validate:"gte=1"`
}

// DefaultModifierOrder is the canonical order of function modifiers.
var DefaultModifierOrder = []string{"public", "protected", "private", "static", "virtual", "nomask"}

// DefaultOptions returns the stock configuration.
func DefaultOptions() Options {
	return Options{
		IndentSize:                     4,
		TabSize:                        4,
		InsertSpaces:                   true,
		MaxLineLength:                  100,
		InsertFinalNewline:             true,
		TrimTrailingWhitespace:         true,
		BracesOnNewLine:                false,
		SpaceBeforeOpenParen:           false,
		SpaceAroundOperators:           true,
		SpaceAroundBinaryOperators:     true,
		SpaceAroundAssignmentOperators: true,
		SpaceAfterComma:                true,
		SpaceAfterSemicolon:            true,
		MaxEmptyLines:                  2,
		InsertSpaceAfterKeywords:       true,
		IncludeStatementSorting:        IncludeSystemFirst,
		InheritanceStatementStyle:      InheritAuto,
		MappingLiteralFormat:           MappingAuto,
		ArrayOfMappingFormat:           MappingAuto,
		ArrayLiteralWrapThreshold:      5,
		ParameterWrapThreshold:         4,
		FunctionModifierOrder:          append([]string(nil), DefaultModifierOrder...),
		SwitchCaseAlignment:            CaseIndent,
		SpaceAfterTypeBeforeStar:       true,
		StarSpacePosition:              StarAfter,
		NestedStructureIndent:          4,
		MaxNodeCount:                   10000,
	}
}

// Layout is the resolved set of layout decisions a walk reads. It starts from
// Options and strategies adjust it before the walk begins; formatters only
// read it.
type Layout struct {
	IndentSize            int
	UseTabs               bool
	SpaceAroundOperators  bool
	SpaceAroundAssignment bool
	SpaceAfterComma       bool
	SpaceAfterSemicolon   bool
	SpaceAfterKeywords    bool
	SpaceBeforeOpenParen  bool
	BracesOnNewLine       bool
	MaxLineLength         int
	MaxEmptyLines         int
	ArrayWrapThreshold    int
	MappingWrapThreshold  int
	ParamWrapThreshold    int
	PreferSingleLine      bool
	DebugComments         bool
}

// LayoutFromOptions derives the starting layout from user options.
func LayoutFromOptions(o Options) Layout {
	mappingThreshold := 3
	switch o.MappingLiteralFormat {
	case MappingExpanded:
		mappingThreshold = 0
	case MappingCompact:
		mappingThreshold = -1
	}
	return Layout{
		IndentSize:            o.IndentSize,
		UseTabs:               !o.InsertSpaces,
		SpaceAroundOperators:  o.SpaceAroundOperators && o.SpaceAroundBinaryOperators,
		SpaceAroundAssignment: o.SpaceAroundAssignmentOperators,
		SpaceAfterComma:       o.SpaceAfterComma,
		SpaceAfterSemicolon:   o.SpaceAfterSemicolon,
		SpaceAfterKeywords:    o.InsertSpaceAfterKeywords,
		SpaceBeforeOpenParen:  o.SpaceBeforeOpenParen,
		BracesOnNewLine:       o.BracesOnNewLine,
		MaxLineLength:         o.MaxLineLength,
		MaxEmptyLines:         o.MaxEmptyLines,
		ArrayWrapThreshold:    o.ArrayLiteralWrapThreshold,
		MappingWrapThreshold:  mappingThreshold,
		ParamWrapThreshold:    o.ParameterWrapThreshold,
	}
}
