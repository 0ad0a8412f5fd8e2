package gradescale

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Transport persists records on behalf of the editor.
type Transport interface {
	// Save stores rec and returns the attributes as persisted.
	Save(ctx context.Context, rec GradeScale) (GradeScale, error)
	// SetCourseUseWeights switches the course between weighted categories
	// and total points.
	SetCourseUseWeights(ctx context.Context, useWeights bool) error
}

type AlertKind string

const (
	AlertInfo  AlertKind = "info"
	AlertError AlertKind = "error"
)

// Notifier is the user-facing alert surface.
type Notifier interface {
	ShowValidationErrors(errs ErrorSet)
	ShowAlert(kind AlertKind, txt string)
	HideAlert()
}

// LogNotifier writes alerts to a zap logger.
type LogNotifier struct{ Log *zap.Logger }

func (n LogNotifier) ShowValidationErrors(errs ErrorSet) {
	n.Log.Info("grading scale has validation errors", zap.Strings("fields", errs.Keys()))
}

func (n LogNotifier) ShowAlert(kind AlertKind, txt string) {
	if kind == AlertError {
		n.Log.Warn(txt)
		return
	}
	n.Log.Info(txt)
}

func (n LogNotifier) HideAlert() {}

type Alert struct {
	Kind AlertKind `json:"kind"`
	Text string    `json:"text"`
}

// RecordingNotifier keeps what was shown so it can be returned to a client.
type RecordingNotifier struct {
	mu         sync.Mutex
	alerts     []Alert
	validation ErrorSet
	visible    bool
}

func (n *RecordingNotifier) ShowValidationErrors(errs ErrorSet) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.validation = errs
}

func (n *RecordingNotifier) ShowAlert(kind AlertKind, txt string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, Alert{Kind: kind, Text: txt})
	n.visible = true
}

func (n *RecordingNotifier) HideAlert() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.visible = false
}

// Alerts returns every alert shown so far.
func (n *RecordingNotifier) Alerts() []Alert {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Alert, len(n.alerts))
	copy(out, n.alerts)
	return out
}

// Current returns the alert on screen, if any.
func (n *RecordingNotifier) Current() (Alert, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.visible || len(n.alerts) == 0 {
		return Alert{}, false
	}
	return n.alerts[len(n.alerts)-1], true
}

func (n *RecordingNotifier) Validation() ErrorSet {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.validation
}
