package application

// Submission outcomes reported to an Observer.
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// Transport labels reported to an Observer.
const (
	TransportSMTP    = "smtp"
	TransportDefault = "default"
)

// Observer receives counters for processed submissions and mail sends.
type Observer interface {
	SubmissionProcessed(outcome string)
	MailSent(transport string, success bool)
}

type nopObserver struct{}

func (nopObserver) SubmissionProcessed(string) {}
func (nopObserver) MailSent(string, bool)      {}

func observerOrNop(o Observer) Observer {
	if o == nil {
		return nopObserver{}
	}
	return o
}
