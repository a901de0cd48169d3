// Package sql turns query text into an AST.
//
// The dialect is the SELECT subset the engine executes:
//
//	SELECT <*| expr [AS alias], ...> FROM <table>
//	       [WHERE <expr>] [ORDER BY <column> [ASC|DESC]] [LIMIT <n>]
//
// Expressions cover literals, column references, arithmetic, comparisons,
// AND/OR/NOT and function calls. GROUP BY is parsed structurally so the
// planner can reject it with a plan error instead of a confusing parse
// error; everything else unknown fails here with a parse error carrying the
// byte offset.
package sql
