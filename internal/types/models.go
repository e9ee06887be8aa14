package types

// SurveyRecord mirrors one document in the Survey_Response table.
// Score fields are pointers: a nil score means the respondent skipped
// the question, which is not the same thing as scoring zero.
type SurveyRecord struct {
	ResponseID     string `json:"Response_ID,omitempty"`
	EmployeeID     string `json:"Employee_ID,omitempty"`
	Department     string `json:"Department,omitempty"`
	Quarter        string `json:"Quarter,omitempty"`
	SubmissionDate string `json:"Submission_Date,omitempty"`

	JobSatisfaction     *float64 `json:"Q1_Job_Satisfaction,omitempty"`
	WorkLifeBalance     *float64 `json:"Q2_Work_Life_Balance,omitempty"`
	ManagerSupport      *float64 `json:"Q3_Manager_Support,omitempty"`
	GrowthOpportunities *float64 `json:"Q4_Growth_Opportunities,omitempty"`
	ENPS                *float64 `json:"Q5_eNPS,omitempty"`

	Comments         string   `json:"Comments,omitempty"`
	RephrasedComment string   `json:"Rephrased_Comment,omitempty"`
	Categories       string   `json:"Categories,omitempty"`
	SentimentScore   *float64 `json:"Sentiment_Score,omitempty"`
	SentimentLabel   string   `json:"Sentiment_Label,omitempty"`
	EventSeason      string   `json:"Event_Season,omitempty"`
}

// EnrichedRow is a survey record carrying merge/preprocess output:
// department-level aggregates plus the derived Year and Overall_Engagement.
type EnrichedRow struct {
	SurveyRecord
	Year              *int     `json:"Year,omitempty"`
	OverallEngagement *float64 `json:"Overall_Engagement,omitempty"`
	AvgDeptTenure     *float64 `json:"avg_dept_tenure,omitempty"`
	TotalEmployees    *float64 `json:"total_employees,omitempty"`
	AvgDeptWorkload   *float64 `json:"avg_dept_workload,omitempty"`
}

type EmployeeRecord struct {
	EmployeeID  string   `json:"Employee_ID"`
	Name        string   `json:"Name,omitempty"`
	Department  string   `json:"Department,omitempty"`
	Role        string   `json:"Role,omitempty"`
	HireDate    string   `json:"Hire_Date,omitempty"`
	IsActive    bool     `json:"Is_Active,omitempty"`
	TenureYears *float64 `json:"Tenure_Years,omitempty"`
}

type WorkloadRecord struct {
	WorkloadID  string   `json:"Workload_ID,omitempty"`
	EmployeeID  string   `json:"Employee_ID"`
	Date        string   `json:"Date,omitempty"`
	HoursLogged *float64 `json:"Hours_Logged,omitempty"`
}

// ActionEntry is one row in the Actions_Log table. Baseline_* hold the
// risk snapshot captured at creation; Impact_* are filled on completion.
type ActionEntry struct {
	ActionID    string `json:"Action_ID"`
	Department  string `json:"Department"`
	Quarter     string `json:"Quarter"`
	Year        int    `json:"Year"`
	SavedAt     string `json:"Saved_at"`
	Status      string `json:"Activity_status"`
	Type        string `json:"Activity_type"`
	AssignedTo  string `json:"Assigned_to,omitempty"`
	Title       string `json:"Activity_title,omitempty"`
	Description string `json:"Description"`
	Impact      string `json:"Impact,omitempty"`

	BaselineBurnoutRisk  *float64 `json:"Baseline_Burnout_Risk,omitempty"`
	BaselineTurnoverRisk *float64 `json:"Baseline_Turnover_Risk,omitempty"`

	CompletedAt    string `json:"Completed_at,omitempty"`
	ImpactBurnout  string `json:"Impact_Burnout,omitempty"`
	ImpactTurnover string `json:"Impact_Turnover,omitempty"`
}

// Ingest task lifecycle: pending -> processing -> completed | failed.
type IngestTask struct {
	TaskID    string        `json:"task_id"`
	Status    string        `json:"status"`
	Message   string        `json:"message,omitempty"`
	Filename  string        `json:"filename,omitempty"`
	CreatedAt string        `json:"created_at"`
	UpdatedAt string        `json:"updated_at,omitempty"`
	Result    *IngestResult `json:"result,omitempty"`
}

type IngestResult struct {
	TotalRows     int            `json:"total_rows"`
	SavedRows     int            `json:"saved_rows"`
	FailedRows    int            `json:"failed_rows"`
	Statistics    IngestStats    `json:"statistics"`
	SampleRecords []SurveyRecord `json:"sample_records,omitempty"`
}

type IngestStats struct {
	CommentsProcessed int      `json:"total_comments_processed"`
	AvgSentimentScore *float64 `json:"average_sentiment_score"`
	UniqueCategories  int      `json:"unique_categories"`
	UniqueQuarters    []string `json:"unique_quarters"`
}
