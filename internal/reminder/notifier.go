package reminder

import "log/slog"

// LogNotifier writes reminder alerts to the structured log. It is the
// notification sink the command-line surface runs with; a platform build
// would substitute a desktop notification sink behind the same interface.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	return &LogNotifier{log: log.With("component", "notifier")}
}

// Notify emits the alert. It never fails visibly to the caller.
func (n *LogNotifier) Notify(taskID int64, title, body string) {
	n.log.Info(title, "task_id", taskID, "body", body)
}
