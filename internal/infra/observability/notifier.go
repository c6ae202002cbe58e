package observability

import "go.uber.org/zap"

// LogNotifier is the default renderer collaborator: it turns session and
// ledger signals into log lines and keeps the session metrics current.
// A real UI would replace this with something that pushes redraws.
type LogNotifier struct {
	metrics *Metrics
	logger  *zap.Logger
}

// NewLogNotifier creates a notifier backed by the given metrics and logger.
func NewLogNotifier(metrics *Metrics, logger *zap.Logger) *LogNotifier {
	return &LogNotifier{metrics: metrics, logger: logger}
}

func (n *LogNotifier) SessionStarted(userID string) {
	n.metrics.SetActiveSessions(1)
	n.logger.Info("renderer: show dashboard", zap.String("user_id", userID))
}

func (n *LogNotifier) SessionEnded(userID, reason string) {
	n.metrics.SetActiveSessions(0)
	if reason == "timeout" {
		n.metrics.IncrSessionTimeout()
	}
	n.logger.Info("renderer: show logged-out prompt",
		zap.String("user_id", userID),
		zap.String("reason", reason),
	)
}

func (n *LogNotifier) StateChanged(userID string) {
	n.logger.Debug("renderer: redraw", zap.String("user_id", userID))
}

func (n *LogNotifier) CountdownTick(userID string, remaining int) {
	n.logger.Debug("renderer: countdown tick",
		zap.String("user_id", userID),
		zap.Int("remaining", remaining),
	)
}
