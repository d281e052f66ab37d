package domain

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type CreateUserMailData struct {
	FullName string `json:"fullName"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type OptimizationCompleteMailData struct {
	FullName           string  `json:"fullName"`
	JobSetName         string  `json:"jobSetName"`
	RunID              int64   `json:"runID"`
	Makespan           float64 `json:"makespan"`
	TotalTardiness     float64 `json:"totalTardiness"`
	ImprovementPercent float64 `json:"improvementPercent"`
}
