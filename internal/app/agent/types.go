package agent

type RegisterInput struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	ClientName string `json:"clientName"`
	Model      string `json:"model"`
	Account    string `json:"account"`
	BaseURL    string `json:"baseUrl"`
	APIKey     string `json:"apiKey"`
}

type PatchInput struct {
	Status  *string `json:"status"`
	Model   *string `json:"model"`
	Account *string `json:"account"`
}
