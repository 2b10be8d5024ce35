package anticaptcha

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// TaskStatus is the status field of a getTaskResult answer.
type TaskStatus string

const (
	StatusProcessing TaskStatus = "processing"
	StatusReady      TaskStatus = "ready"
)

// TaskResult is a getTaskResult answer for a task that was accepted by the API.
type TaskResult struct {
	Status     TaskStatus `json:"status"`
	Solution   Solution   `json:"solution"`
	Cost       Amount     `json:"cost"`
	IP         string     `json:"ip"`
	CreateTime int64      `json:"createTime"`
	EndTime    int64      `json:"endTime"`
	SolveCount Count      `json:"solveCount"`
}

// Ready reports whether the task has been solved.
func (r *TaskResult) Ready() bool { return r.Status == StatusReady }

// Solution holds the union of solution fields returned for the supported task types.
// Only the fields matching the originating task type are set.
type Solution struct {
	// ImageToText
	Text string `json:"text,omitempty"`
	URL  string `json:"url,omitempty"`

	// Recaptcha V2, V3 and Enterprise
	GRecaptchaResponse string `json:"gRecaptchaResponse,omitempty"`

	// FunCaptcha
	Token string `json:"token,omitempty"`

	// GeeTest
	Challenge string `json:"challenge,omitempty"`
	Validate  string `json:"validate,omitempty"`
	Seccode   string `json:"seccode,omitempty"`

	// SquareNetText
	CellNumbers []int `json:"cellNumbers,omitempty"`

	// CustomCaptcha
	Answers map[string]any `json:"answers,omitempty"`

	// Raw is the undecoded solution object.
	Raw json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the known fields and keeps the raw object.
func (s *Solution) UnmarshalJSON(data []byte) error {
	type plain Solution
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*s = Solution(p)
	s.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// Amount is a money value the API sends either as a JSON number or a quoted decimal.
type Amount float64

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		*a = 0
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*a = Amount(f)
	return nil
}

// Count is an integer the API sends either as a JSON number or a quoted string.
type Count int

func (n *Count) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		*n = 0
		return nil
	}
	v, err := strconv.Atoi(string(data))
	if err != nil {
		return err
	}
	*n = Count(v)
	return nil
}

// QueueStats describes the load of one of the vendor's worker queues.
type QueueStats struct {
	Waiting int     `json:"waiting"`
	Load    float64 `json:"load"`
	Bid     float64 `json:"bid"`
	Speed   float64 `json:"speed"`
	Total   int     `json:"total"`
}

// Queue identifiers accepted by getQueueStats.
const (
	QueueImageToTextEnglish   = 1
	QueueImageToTextRussian   = 2
	QueueRecaptchaV2Proxy     = 5
	QueueRecaptchaV2Proxyless = 6
	QueueFunCaptchaProxy      = 7
	QueueFunCaptchaProxyless  = 10
	QueueSquareNetText        = 11
	QueueGeeTestProxy         = 12
	QueueGeeTestProxyless     = 13
	QueueRecaptchaV3Score03   = 18
	QueueRecaptchaV3Score07   = 19
	QueueRecaptchaV3Score09   = 20
)

type balanceResponse struct {
	errorFields
	Balance float64 `json:"balance"`
}

type createTaskResponse struct {
	errorFields
	TaskID int64 `json:"taskId"`
}

type taskResultResponse struct {
	errorFields
	TaskResult
}

type queueStatsResponse struct {
	errorFields
	QueueStats
}
