package tools

import "github.com/ok-agent/ok/internal/store"

// RegisterBuiltins registers every tool in SPEC_FULL's §4.7 catalog except
// task, which depends on the Sub-Agent Runner (engine.TaskRunner) and is
// registered separately by its caller once that collaborator exists.
func RegisterBuiltins(r *Registry, todos *store.TodoStore, search SearchProvider) {
	r.Register(NewReadTool())
	r.Register(NewWriteTool())
	r.Register(NewEditTool())
	r.Register(NewGrepTool())
	r.Register(NewGlobTool())
	r.Register(NewBashTool())
	r.Register(NewBashOutputTool())
	r.Register(NewKillShellTool())
	r.Register(NewTodoWriteTool(todos))
	r.Register(NewWebFetchTool())
	r.Register(NewWebSearchTool(search))
	r.Register(NewNotebookEditTool())
	r.Register(NewAskUserQuestionTool())
	r.Register(NewEnterPlanModeTool())
	r.Register(NewExitPlanModeTool())
}
