package errors

import "strings"

// Convenience functions for common error patterns

// Pipeline configuration errors

func DuplicateActionName(name string) *DocPipeError {
	return New(CategoryConfig, SeverityFatal, "duplicate action name").
		WithContext("action", name)
}

func UnknownActionReference(action, constraint string) *DocPipeError {
	return New(CategoryConfig, SeverityFatal, "ordering constraint references unknown action").
		WithContext("action", action).
		WithContext("references", constraint)
}

func ConstraintCycle(actions []string) *DocPipeError {
	return New(CategoryConfig, SeverityFatal, "cycle in action ordering constraints").
		WithContext("actions", strings.Join(actions, " -> "))
}

func ActionNotFound(name string) *DocPipeError {
	return New(CategoryConfig, SeverityFatal, "no such action registered").
		WithContext("action", name)
}

func ConfigLoadError(path string, cause error) *DocPipeError {
	return Wrap(cause, CategoryConfig, SeverityFatal, "failed to load pipeline configuration").
		WithContext("path", path)
}

// Markdown preprocessing errors

func ScanError(file string, line int, reason string) *DocPipeError {
	return New(CategoryScan, SeverityFatal, reason).
		WithContext("file", file).
		WithContext("line", line)
}

func TagSettingsError(file string, tag string, line int, cause error) *DocPipeError {
	return Wrap(cause, CategoryScan, SeverityFatal, "malformed tag settings").
		WithContext("file", file).
		WithContext("tag", tag).
		WithContext("line", line)
}

func UnknownTag(file string, tag string, line int) *DocPipeError {
	return New(CategoryTag, SeverityFatal, "no processor registered for tag").
		WithContext("file", file).
		WithContext("tag", tag).
		WithContext("line", line)
}

func DuplicateAnchor(id, file, previousFile string) *DocPipeError {
	return New(CategoryAnchor, SeverityFatal, "anchor id registered twice").
		WithContext("anchor", id).
		WithContext("file", file).
		WithContext("previous_file", previousFile)
}

func UnresolvedReference(id, file string, line int) *DocPipeError {
	return New(CategoryReference, SeverityFatal, "link references undefined anchor").
		WithContext("anchor", id).
		WithContext("file", file).
		WithContext("line", line)
}

// Execution errors

func ActionFailed(action string, cause error) *DocPipeError {
	return Wrap(cause, CategoryAction, SeverityFatal, "action failed").
		WithContext("action", action)
}

func WorkspaceError(operation string, cause error) *DocPipeError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "workspace operation failed").
		WithContext("operation", operation)
}

func FileReadError(path string, cause error) *DocPipeError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "failed to read file").
		WithContext("path", path)
}
