package alerts

// Outcome is the result of processing one alert during a run.
type Outcome struct {
	AlertID     int64
	ResumeTitle string

	// Skipped is set when the alert could not be attempted, with the reason.
	Skipped string

	// Err is set when the alert was attempted and failed. The checkpoint
	// stays frozen so the same window is retried next run.
	Err error

	OffersFound int
	OffersKept  int
	NewMatches  int
	Notified    bool
	FirstRun    bool
	DryRun      bool
}

// Report aggregates every alert outcome of one run.
type Report struct {
	Outcomes []Outcome
}

func (r *Report) Succeeded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Err == nil && o.Skipped == "" {
			n++
		}
	}
	return n
}

func (r *Report) Failed() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Err != nil {
			n++
		}
	}
	return n
}

func (r *Report) Skipped() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Skipped != "" {
			n++
		}
	}
	return n
}
