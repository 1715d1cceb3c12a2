package pipeline

import "strings"

// Status is the outcome of one pipeline stage.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// Result is the uniform outcome of a pipeline stage, consumed by the caller
// and rendered as a single operator-facing log line.
type Result struct {
	Step    string
	Status  Status
	Message string
	Err     error
}

func success(step, msg string) Result {
	return Result{Step: step, Status: StatusSuccess, Message: msg}
}

func failure(step string, err error) Result {
	return Result{Step: step, Status: StatusFailure, Err: err}
}

// Line renders the stage outcome as the single-line marker message used in
// pipeline logs and alerts, e.g.
//
//	TRANSFORM_SUCCESS: ✔️ Orders transformation completed
//	VALIDATE_FAILED: ❌ duplicate primary keys found in orders.order_id: [o1]
func (r Result) Line() string {
	tag := strings.ToUpper(r.Step)
	if r.Status == StatusSuccess {
		return tag + "_SUCCESS: ✔️ " + r.Message
	}
	msg := r.Message
	if msg == "" && r.Err != nil {
		msg = r.Err.Error()
	}
	return tag + "_FAILED: ❌ " + msg
}
