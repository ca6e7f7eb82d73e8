package models

// Stats is the dashboard read model served by GET /api/analyses/stats/.
type Stats struct {
	Overview         StatsOverview    `json:"overview"`
	ProcessingStats  ProcessingStats  `json:"processing_stats"`
	DeformationStats DeformationStats `json:"deformation_stats"`
	RecentTasks      []Analysis       `json:"recent_tasks"`
	Timeline         Timeline         `json:"timeline"`
}

type StatsOverview struct {
	Total       int     `json:"total"`
	Completed   int     `json:"completed"`
	Processing  int     `json:"processing"`
	Pending     int     `json:"pending"`
	Error       int     `json:"error"`
	Cancelled   int     `json:"cancelled"`
	SuccessRate float64 `json:"success_rate"`
}

type ProcessingStats struct {
	AvgProcessingTime   float64 `json:"avg_processing_time"`
	TotalProcessingTime float64 `json:"total_processing_time"`
}

type DeformationStats struct {
	AvgMaxDisplacement  float64 `json:"avg_max_displacement"`
	AvgMeanDisplacement float64 `json:"avg_mean_displacement"`
}

type Timeline struct {
	Last24Hours int `json:"last_24_hours"`
	LastWeek    int `json:"last_week"`
	LastMonth   int `json:"last_month"`
}

// Summary is the compact read model served by GET /api/analyses/summary/.
type Summary struct {
	TotalTasks      int            `json:"total_tasks"`
	CompletedTasks  int            `json:"completed_tasks"`
	SuccessRate     float64        `json:"success_rate"`
	LatestTasks     []Analysis     `json:"latest_tasks"`
	ProcessingTasks []Analysis     `json:"processing_tasks"`
	TasksByStatus   map[Status]int `json:"tasks_by_status"`
}
