package execshell

// CommandEventObserver is notified around every git invocation. Observers run
// synchronously on the executing goroutine.
type CommandEventObserver interface {
	CommandStarted(command ShellCommand)
	CommandCompleted(command ShellCommand, result ExecutionResult)
	// CommandExecutionFailed fires when no result exists, for example when the
	// process could not start or its deadline expired.
	CommandExecutionFailed(command ShellCommand, failure error)
}

// commandEventFanout forwards each event to the registered observers in order.
type commandEventFanout []CommandEventObserver

func newCommandEventFanout(observers []CommandEventObserver) commandEventFanout {
	fanout := make(commandEventFanout, 0, len(observers))
	for _, observer := range observers {
		if observer != nil {
			fanout = append(fanout, observer)
		}
	}
	return fanout
}

func (fanout commandEventFanout) CommandStarted(command ShellCommand) {
	for _, observer := range fanout {
		observer.CommandStarted(command)
	}
}

func (fanout commandEventFanout) CommandCompleted(command ShellCommand, result ExecutionResult) {
	for _, observer := range fanout {
		observer.CommandCompleted(command, result)
	}
}

func (fanout commandEventFanout) CommandExecutionFailed(command ShellCommand, failure error) {
	for _, observer := range fanout {
		observer.CommandExecutionFailed(command, failure)
	}
}
