package workflow

import "errors"

// State is the position of the pipeline.
type State int

const (
	StateIdle State = iota
	StatePromptEntered
	StateOptimizing
	StateOptimized
	StateGenerating
	StateEditing
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePromptEntered:
		return "prompt_entered"
	case StateOptimizing:
		return "optimizing"
	case StateOptimized:
		return "optimized"
	case StateGenerating:
		return "generating"
	case StateEditing:
		return "editing"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Action names an operation that can be in flight.
type Action int

const (
	ActionOptimize Action = iota
	ActionGenerate
	ActionDownloadArchive
	ActionDownloadFile
)

func (a Action) String() string {
	switch a {
	case ActionOptimize:
		return "optimize"
	case ActionGenerate:
		return "generate"
	case ActionDownloadArchive:
		return "download_archive"
	case ActionDownloadFile:
		return "download_file"
	default:
		return "unknown"
	}
}

var (
	ErrBusy         = errors.New("action already in progress")
	ErrStale        = errors.New("response superseded")
	ErrInvalidState = errors.New("action not available in current state")
)

type StatusKind int

const (
	StatusNone StatusKind = iota
	StatusError
	StatusSuccess
)

// Status is the single banner line. At most one of error or success is set.
type Status struct {
	Kind    StatusKind
	Message string
}

func (s Status) IsError() bool   { return s.Kind == StatusError }
func (s Status) IsSuccess() bool { return s.Kind == StatusSuccess }

const (
	msgOptimized   = "Prompt optimized successfully! Review and edit if needed."
	msgGenerated   = "Code generated successfully! You can now download your files."
	msgZipDone     = "Zip file downloaded successfully!"
	msgCopied      = "Code copied to clipboard!"
	msgOptimizeErr = "Failed to optimize prompt"
	msgGenerateErr = "Failed to generate code"
	msgZipErr      = "Failed to download zip file"
	msgCopyErr     = "Failed to copy to clipboard"
	msgArchiveErr  = "Failed to save zip file"
)

// Example is a canned starting prompt.
type Example struct {
	Title string
}

var examples = []Example{
	{Title: "Todo App with Authentication"},
	{Title: "REST API with Database"},
	{Title: "React Dashboard with Charts"},
	{Title: "E-commerce Product Page"},
	{Title: "Chat Application"},
	{Title: "File Upload System"},
}

// Examples returns the canned prompts.
func Examples() []Example {
	return append([]Example(nil), examples...)
}
