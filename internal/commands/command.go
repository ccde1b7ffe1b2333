// Package commands parses the slash-command palette input.
package commands

import (
	"fmt"
	"strconv"
	"strings"
)

type Type string

const (
	TypeAdd     Type = "add"
	TypeLog     Type = "log"
	TypeSnooze  Type = "snooze"
	TypeIgnore  Type = "ignore"
	TypeArchive Type = "archive"
	TypeShow    Type = "show"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type AddArgs struct {
	Title string
}

// LogArgs records an activity against a template: `log 12 performed water
// looked cloudy` logs template 12 as performed with trailing notes.
type LogArgs struct {
	TemplateID int64
	Action     string
	Notes      string
}

type TemplateArgs struct {
	TemplateID int64
}

type ShowArgs struct {
	Subject string
}

type Command struct {
	Type    Type
	Raw     string
	Add     *AddArgs
	Log     *LogArgs
	Snooze  *TemplateArgs
	Ignore  *TemplateArgs
	Archive *TemplateArgs
	Show    *ShowArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeAdd:
		return parseAdd(input, args)
	case TypeLog:
		return parseLog(input, args)
	case TypeSnooze:
		return parseTemplateRef(input, TypeSnooze, args)
	case TypeIgnore:
		return parseTemplateRef(input, TypeIgnore, args)
	case TypeArchive:
		return parseTemplateRef(input, TypeArchive, args)
	case TypeShow:
		return parseShow(input, args)
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseAdd(raw string, args []string) (Command, error) {
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add requires a title"}
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &AddArgs{Title: title}}, nil
}

func parseLog(raw string, args []string) (Command, error) {
	if len(args) < 2 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "log requires a task id and an action"}
	}
	id, err := parseID(args[0])
	if err != nil {
		return Command{}, err
	}
	action := strings.ToLower(args[1])
	switch action {
	case "performed", "skipped":
	default:
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("log action must be performed or skipped, got %s", args[1])}
	}
	return Command{Type: TypeLog, Raw: raw, Log: &LogArgs{
		TemplateID: id,
		Action:     action,
		Notes:      strings.TrimSpace(strings.Join(args[2:], " ")),
	}}, nil
}

func parseTemplateRef(raw string, typ Type, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s requires exactly one task id", typ)}
	}
	id, err := parseID(args[0])
	if err != nil {
		return Command{}, err
	}
	ref := &TemplateArgs{TemplateID: id}
	cmd := Command{Type: typ, Raw: raw}
	switch typ {
	case TypeSnooze:
		cmd.Snooze = ref
	case TypeIgnore:
		cmd.Ignore = ref
	case TypeArchive:
		cmd.Archive = ref
	}
	return cmd, nil
}

func parseShow(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "show requires a subject"}
	}
	subject := strings.ToLower(args[0])
	switch subject {
	case "due", "tasks", "tanks", "history":
	default:
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown show subject: %s", subject)}
	}
	return Command{Type: TypeShow, Raw: raw, Show: &ShowArgs{Subject: subject}}, nil
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("invalid task id: %s", raw)}
	}
	return id, nil
}
