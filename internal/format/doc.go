// Package format turns LPC syntax trees back into canonical text.
//
// Назначение: опции форматирования, per-call Context (IndentManager,
// LineBreakManager, ErrorCollector, Core) и пять категорийных форматтеров,
// которые собирают текст одной конструкции за раз.
// Не делает: обход дерева и маршрутизацию (internal/visitor, internal/router),
// выбор стратегии, кэш и IO.
// Зависимости: internal/tree, internal/token, internal/diag.
//
// Отступы относительные: форматтер пишет конструкцию так, будто она стоит в
// нулевой колонке, а объемлющий блок сдвигает её строки на одну единицу.
package format
