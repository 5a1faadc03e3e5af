package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sandeepkv93/hustle/internal/model"
)

type Type string

const (
	TypeAdd    Type = "add"
	TypeEdit   Type = "edit"
	TypeDone   Type = "done"
	TypeSkip   Type = "skip"
	TypeDelete Type = "delete"
	TypeStart  Type = "start"
	TypePause  Type = "pause"
	TypeResume Type = "resume"
	TypeStop   Type = "stop"
	TypeFinish Type = "finish"
	TypeExport Type = "export"
	TypeImport Type = "import"
)

var aliases = map[string]Type{
	"complete": TypeDone,
	"rm":       TypeDelete,
	"del":      TypeDelete,
	"timer":    TypeStart,
}

// Defaults for add when the duration or category token is omitted.
const (
	DefaultDuration                = 25
	DefaultCategory model.Category = model.CategoryWork
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
	Name        string
	Description string
	Duration    int
	Category    model.Category
}

// EditArgs carries only the fields the user mentioned.
type EditArgs struct {
	Target      string
	Name        *string
	Description *string
	Duration    *int
	Category    *model.Category
}

type TargetArgs struct {
	Target string
}

type PathArgs struct {
	Path string
}

type Command struct {
	Type   Type
	Raw    string
	Add    *AddArgs
	Edit   *EditArgs
	Target *TargetArgs
	Path   *PathArgs
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
	typ := Type(head)
	if alias, ok := aliases[head]; ok {
		typ = alias
	}

	switch typ {
	case TypeAdd:
		return parseAdd(input, args)
	case TypeEdit:
		return parseEdit(input, args)
	case TypeDone, TypeSkip, TypeDelete, TypeStart:
		if len(args) != 1 {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s requires exactly one task id", typ)}
		}
		return Command{Type: typ, Raw: input, Target: &TargetArgs{Target: args[0]}}, nil
	case TypePause, TypeResume, TypeStop, TypeFinish:
		if len(args) != 0 {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s takes no arguments", typ)}
		}
		return Command{Type: typ, Raw: input}, nil
	case TypeExport:
		return Command{Type: typ, Raw: input, Path: &PathArgs{Path: strings.Join(args, " ")}}, nil
	case TypeImport:
		if len(args) == 0 {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "import requires a file path"}
		}
		return Command{Type: typ, Raw: input, Path: &PathArgs{Path: strings.Join(args, " ")}}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

// fields splits key:value tokens (dur, cat, desc) from free words. desc:
// consumes the rest of the line.
type fields struct {
	words       []string
	duration    *int
	category    *model.Category
	description *string
}

func parseFields(args []string) (fields, error) {
	var out fields
	for i, arg := range args {
		key, value, ok := strings.Cut(arg, ":")
		if !ok {
			out.words = append(out.words, arg)
			continue
		}
		switch strings.ToLower(key) {
		case "dur", "duration":
			n, err := strconv.Atoi(value)
			if err != nil || n <= 0 {
				return fields{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("invalid duration %q", value)}
			}
			out.duration = &n
		case "cat", "category":
			c, err := model.ParseCategory(value)
			if err != nil {
				return fields{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("invalid category %q", value)}
			}
			out.category = &c
		case "desc", "description":
			desc := strings.TrimSpace(strings.Join(append([]string{value}, args[i+1:]...), " "))
			out.description = &desc
			return out, nil
		default:
			out.words = append(out.words, arg)
		}
	}
	return out, nil
}

func parseAdd(raw string, args []string) (Command, error) {
	f, err := parseFields(args)
	if err != nil {
		return Command{}, err
	}
	name := strings.TrimSpace(strings.Join(f.words, " "))
	if name == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add requires a task name"}
	}
	out := AddArgs{Name: name, Duration: DefaultDuration, Category: DefaultCategory}
	if f.duration != nil {
		out.Duration = *f.duration
	}
	if f.category != nil {
		out.Category = *f.category
	}
	if f.description != nil {
		out.Description = *f.description
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &out}, nil
}

func parseEdit(raw string, args []string) (Command, error) {
	if len(args) < 2 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "edit requires a task id and at least one change"}
	}
	f, err := parseFields(args[1:])
	if err != nil {
		return Command{}, err
	}
	out := EditArgs{Target: args[0], Duration: f.duration, Category: f.category, Description: f.description}
	if len(f.words) > 0 {
		name := strings.Join(f.words, " ")
		out.Name = &name
	}
	return Command{Type: TypeEdit, Raw: raw, Edit: &out}, nil
}
