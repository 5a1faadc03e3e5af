package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Add    func(AddArgs) (Result, error)
	Edit   func(EditArgs) (Result, error)
	Done   func(TargetArgs) (Result, error)
	Skip   func(TargetArgs) (Result, error)
	Delete func(TargetArgs) (Result, error)
	Start  func(TargetArgs) (Result, error)
	Pause  func() (Result, error)
	Resume func() (Result, error)
	Stop   func() (Result, error)
	Finish func() (Result, error)
	Export func(PathArgs) (Result, error)
	Import func(PathArgs) (Result, error)
}

func missing(t Type) error {
	return &CommandError{Code: ErrCodeHandlerMissing, Message: fmt.Sprintf("%s handler not configured", t)}
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeAdd:
		if handlers.Add == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Add(*cmd.Add)
	case TypeEdit:
		if handlers.Edit == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Edit(*cmd.Edit)
	case TypeDone, TypeSkip, TypeDelete, TypeStart:
		h := map[Type]func(TargetArgs) (Result, error){
			TypeDone:   handlers.Done,
			TypeSkip:   handlers.Skip,
			TypeDelete: handlers.Delete,
			TypeStart:  handlers.Start,
		}[cmd.Type]
		if h == nil {
			return Result{}, missing(cmd.Type)
		}
		return h(*cmd.Target)
	case TypePause, TypeResume, TypeStop, TypeFinish:
		h := map[Type]func() (Result, error){
			TypePause:  handlers.Pause,
			TypeResume: handlers.Resume,
			TypeStop:   handlers.Stop,
			TypeFinish: handlers.Finish,
		}[cmd.Type]
		if h == nil {
			return Result{}, missing(cmd.Type)
		}
		return h()
	case TypeExport:
		if handlers.Export == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Export(*cmd.Path)
	case TypeImport:
		if handlers.Import == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Import(*cmd.Path)
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}
