package qasm

// RewriteAction tells the rewriter what to do with a visited statement.
// The explicit three-way result avoids the "nil means delete" convention.
type RewriteAction uint8

const (
	// RewriteKeep keeps the statement as-is and descends into its children.
	RewriteKeep RewriteAction = iota
	// RewriteReplace substitutes the statement with the returned list.
	// Replacements are not re-visited.
	RewriteReplace
	// RewriteRemove deletes the statement.
	RewriteRemove
)

// RewriteFunc inspects one statement and decides its fate. The replacement
// list is only consulted for RewriteReplace.
type RewriteFunc func(stmt *Stmt) (RewriteAction, []Stmt)

// RewriteStmts applies fn to every statement in order, descending into
// branch bodies of kept statements. The input slice is never mutated; the
// result shares unchanged payloads but owns its spine, so callers can build
// a full rewrite and commit it only on success.
func RewriteStmts(stmts []Stmt, fn RewriteFunc) []Stmt {
	out := make([]Stmt, 0, len(stmts))
	for i := range stmts {
		stmt := stmts[i]
		action, repl := fn(&stmt)
		switch action {
		case RewriteKeep:
			if stmt.Kind == StmtBranch {
				stmt.Branch.Then = RewriteStmts(stmt.Branch.Then, fn)
				if stmt.Branch.HasElse {
					stmt.Branch.Else = RewriteStmts(stmt.Branch.Else, fn)
				}
			}
			out = append(out, stmt)
		case RewriteReplace:
			out = append(out, repl...)
		case RewriteRemove:
		}
	}
	return out
}
