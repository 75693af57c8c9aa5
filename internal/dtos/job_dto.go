package dtos

type JobExtractionRequest struct {
	RawHTML string `json:"raw_html" binding:"required"`
	URL     string `json:"url"`
}

type JobCreationRequest struct {
	CompanyName string `json:"company_name" binding:"required"`
	Title       string `json:"role_title" binding:"required"`
	Description string `json:"description" binding:"required"`

	// Optional Fields
	JobLink  string `json:"job_link"`
	Location string `json:"location"`
}
