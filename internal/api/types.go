package api

// Wire types for the analysis backend. Field names follow the backend's JSON
// contract exactly; nothing here is persisted locally.

// RiskyClause is a single flagged contract passage.
type RiskyClause struct {
	ClauseText  string `json:"clause_text"`
	RiskLevel   string `json:"risk_level"` // high, medium, low; backend-owned vocabulary
	Explanation string `json:"explanation"`
	Suggestion  string `json:"suggestion"`
}

// AnalysisResult is the structured output of one contract analysis.
// It is created atomically from an upload response and treated as immutable;
// a new upload replaces it wholesale.
type AnalysisResult struct {
	OverallRiskScore  float64       `json:"overall_risk_score"`
	Summary           string        `json:"summary"`
	RiskyClauses      []RiskyClause `json:"risky_clauses"`
	NegotiationPoints []string      `json:"negotiation_points"`
	ContractText      string        `json:"contract_text"`
	Filename          string        `json:"filename,omitempty"`
	ContractType      string        `json:"contract_type,omitempty"`
	UserID            string        `json:"user_id,omitempty"`
	UserName          string        `json:"user_name,omitempty"`
	ChatID            string        `json:"chat_id,omitempty"`
}

// ChatMessage is one transcript entry. Timestamps are assigned client-side
// at message-creation time, in RFC 3339.
type ChatMessage struct {
	Role      string `json:"role"` // "user" or "assistant"
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// ChatRequest carries the full conversational context for one chat turn:
// the contract text, the analysis, and every prior message.
type ChatRequest struct {
	UserID         string          `json:"user_id"`
	Message        string          `json:"message"`
	ContractText   string          `json:"contract_text"`
	AnalysisResult *AnalysisResult `json:"analysis_result"`
	ChatHistory    []ChatMessage   `json:"chat_history"`
}

// ChatResponse is the assistant's reply for one turn.
type ChatResponse struct {
	Response string `json:"response"`
	Status   string `json:"status,omitempty"`
}

// ChatHistoryItem is the summary record used only for list display.
type ChatHistoryItem struct {
	ChatID           string `json:"chat_id"`
	UserID           string `json:"user_id"`
	ContractFilename string `json:"contract_filename"`
	ContractType     string `json:"contract_type"`
	CreatedAt        string `json:"created_at"`
	LastMessageAt    string `json:"last_message_at"`
	MessageCount     int    `json:"message_count"`
}

// ContractInfo ties a saved session back to its uploaded contract.
type ContractInfo struct {
	Filename       string          `json:"filename"`
	ContractType   string          `json:"contract_type"`
	ContractText   string          `json:"contract_text"`
	AnalysisResult *AnalysisResult `json:"analysis_result"`
}

// ChatSession is a server-tracked conversation thread tied to one contract.
type ChatSession struct {
	ChatID       string        `json:"chat_id"`
	Messages     []ChatMessage `json:"messages"`
	ContractInfo ContractInfo  `json:"contract_info"`
}

// HealthStatus is the /health probe response.
type HealthStatus struct {
	Status  string `json:"status"`
	Service string `json:"service,omitempty"`
}

type chatHistoryResponse struct {
	ChatHistory []ChatHistoryItem `json:"chat_history"`
	Status      string            `json:"status,omitempty"`
	Message     string            `json:"message,omitempty"`
}

type chatSessionResponse struct {
	ChatSession ChatSession `json:"chat_session"`
	Status      string      `json:"status,omitempty"`
}

// UploadResult is the response of the v1 upload variant, which only
// acknowledges receipt.
type UploadResult struct {
	Message string `json:"message"`
}
