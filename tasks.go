package anticaptcha

import (
	"encoding/json"
	"errors"
)

// TaskType is the "type" tag of a task payload.
type TaskType string

const (
	TypeImageToText                    TaskType = "ImageToTextTask"
	TypeRecaptchaV2                    TaskType = "RecaptchaV2Task"
	TypeRecaptchaV2Proxyless           TaskType = "RecaptchaV2TaskProxyless"
	TypeRecaptchaV3Proxyless           TaskType = "RecaptchaV3TaskProxyless"
	TypeRecaptchaV2Enterprise          TaskType = "RecaptchaV2EnterpriseTask"
	TypeRecaptchaV2EnterpriseProxyless TaskType = "RecaptchaV2EnterpriseTaskProxyless"
	TypeFunCaptcha                     TaskType = "FunCaptchaTask"
	TypeFunCaptchaProxyless            TaskType = "FunCaptchaTaskProxyless"
	TypeSquareNetText                  TaskType = "SquareNetTextTask"
	TypeGeeTest                        TaskType = "GeeTestTask"
	TypeGeeTestProxyless               TaskType = "GeeTestTaskProxyless"
	TypeCustomCaptcha                  TaskType = "CustomCaptchaTask"
)

// Task is a captcha task payload. The set of implementations is closed:
// one struct per supported captcha type, each serializing its own type tag.
type Task interface {
	Type() TaskType
	isTask()
}

// ProxyType is the protocol of a task proxy.
type ProxyType string

const (
	ProxyHTTP   ProxyType = "http"
	ProxySOCKS4 ProxyType = "socks4"
	ProxySOCKS5 ProxyType = "socks5"
)

// Proxy is the proxy a worker solves the captcha through.
// Its fields are flattened into the task object.
type Proxy struct {
	ProxyType     ProxyType `json:"proxyType"`
	ProxyAddress  string    `json:"proxyAddress"`
	ProxyPort     int       `json:"proxyPort"`
	ProxyLogin    string    `json:"proxyLogin,omitempty"`
	ProxyPassword string    `json:"proxyPassword,omitempty"`
	UserAgent     string    `json:"userAgent"`
	Cookies       string    `json:"cookies,omitempty"`
}

var errInvalidProxy = errors.New("proxy requires type, address and port")

// Validate checks the fields the API rejects when missing.
func (p *Proxy) Validate() error {
	if p.ProxyType == "" || p.ProxyAddress == "" || p.ProxyPort <= 0 {
		return errInvalidProxy
	}
	return nil
}

// proxyTag picks the proxy or proxyless variant of a task type.
func proxyTag(p *Proxy, withProxy, proxyless TaskType) TaskType {
	if p != nil {
		return withProxy
	}
	return proxyless
}

// marshalTagged encodes v, which must encode to a JSON object, with a leading "type" field.
func marshalTagged(typ TaskType, v any) ([]byte, error) {
	fields, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	tag, err := json.Marshal(typ)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(fields)+len(tag)+9)
	out = append(out, `{"type":`...)
	out = append(out, tag...)
	if len(fields) > 2 {
		out = append(out, ',')
		out = append(out, fields[1:]...)
		return out, nil
	}
	return append(out, '}'), nil
}

// NumericOption restricts the characters accepted for an image captcha answer.
type NumericOption int

const (
	NumericNoDemand   NumericOption = 0
	NumericOnly       NumericOption = 1
	NumericNoNumerals NumericOption = 2
)

// ImageToText is an image OCR task. Body is the base64 encoded image.
type ImageToText struct {
	Body       string        `json:"body"`
	Phrase     bool          `json:"phrase,omitempty"`
	Case       bool          `json:"case,omitempty"`
	Numeric    NumericOption `json:"numeric,omitempty"`
	Math       bool          `json:"math,omitempty"`
	MinLength  int           `json:"minLength,omitempty"`
	MaxLength  int           `json:"maxLength,omitempty"`
	Comment    string        `json:"comment,omitempty"`
	WebsiteURL string        `json:"websiteURL,omitempty"`
}

func (ImageToText) Type() TaskType { return TypeImageToText }
func (ImageToText) isTask()        {}

func (t ImageToText) MarshalJSON() ([]byte, error) {
	type plain ImageToText
	return marshalTagged(t.Type(), plain(t))
}

// RecaptchaV2 is a Google reCAPTCHA v2 task, solved through Proxy when set.
type RecaptchaV2 struct {
	WebsiteURL          string `json:"websiteURL"`
	WebsiteKey          string `json:"websiteKey"`
	RecaptchaDataSValue string `json:"recaptchaDataSValue,omitempty"`
	IsInvisible         bool   `json:"isInvisible,omitempty"`
	*Proxy
}

func (t RecaptchaV2) Type() TaskType {
	return proxyTag(t.Proxy, TypeRecaptchaV2, TypeRecaptchaV2Proxyless)
}
func (RecaptchaV2) isTask() {}

func (t RecaptchaV2) MarshalJSON() ([]byte, error) {
	type plain RecaptchaV2
	return marshalTagged(t.Type(), plain(t))
}

// RecaptchaV3 is a score based reCAPTCHA v3 task. The API only offers it proxyless.
type RecaptchaV3 struct {
	WebsiteURL   string  `json:"websiteURL"`
	WebsiteKey   string  `json:"websiteKey"`
	MinScore     float64 `json:"minScore"`
	PageAction   string  `json:"pageAction,omitempty"`
	IsEnterprise bool    `json:"isEnterprise,omitempty"`
	APIDomain    string  `json:"apiDomain,omitempty"`
}

func (RecaptchaV3) Type() TaskType { return TypeRecaptchaV3Proxyless }
func (RecaptchaV3) isTask()        {}

func (t RecaptchaV3) MarshalJSON() ([]byte, error) {
	type plain RecaptchaV3
	return marshalTagged(t.Type(), plain(t))
}

// RecaptchaV2Enterprise is a reCAPTCHA v2 Enterprise task, solved through Proxy when set.
type RecaptchaV2Enterprise struct {
	WebsiteURL        string         `json:"websiteURL"`
	WebsiteKey        string         `json:"websiteKey"`
	EnterprisePayload map[string]any `json:"enterprisePayload,omitempty"`
	APIDomain         string         `json:"apiDomain,omitempty"`
	*Proxy
}

func (t RecaptchaV2Enterprise) Type() TaskType {
	return proxyTag(t.Proxy, TypeRecaptchaV2Enterprise, TypeRecaptchaV2EnterpriseProxyless)
}
func (RecaptchaV2Enterprise) isTask() {}

func (t RecaptchaV2Enterprise) MarshalJSON() ([]byte, error) {
	type plain RecaptchaV2Enterprise
	return marshalTagged(t.Type(), plain(t))
}

// FunCaptcha is an Arkose Labs FunCaptcha task, solved through Proxy when set.
type FunCaptcha struct {
	WebsiteURL               string `json:"websiteURL"`
	WebsitePublicKey         string `json:"websitePublicKey"`
	FuncaptchaAPIJSSubdomain string `json:"funcaptchaApiJSSubdomain,omitempty"`
	Data                     string `json:"data,omitempty"`
	*Proxy
}

func (t FunCaptcha) Type() TaskType {
	return proxyTag(t.Proxy, TypeFunCaptcha, TypeFunCaptchaProxyless)
}
func (FunCaptcha) isTask() {}

func (t FunCaptcha) MarshalJSON() ([]byte, error) {
	type plain FunCaptcha
	return marshalTagged(t.Type(), plain(t))
}

// SquareNetText asks workers to select the grid cells containing ObjectName.
type SquareNetText struct {
	Body         string `json:"body"`
	ObjectName   string `json:"objectName"`
	RowsCount    int    `json:"rowsCount"`
	ColumnsCount int    `json:"columnsCount"`
}

func (SquareNetText) Type() TaskType { return TypeSquareNetText }
func (SquareNetText) isTask()        {}

func (t SquareNetText) MarshalJSON() ([]byte, error) {
	type plain SquareNetText
	return marshalTagged(t.Type(), plain(t))
}

// GeeTest is a GeeTest slider task, solved through Proxy when set.
type GeeTest struct {
	WebsiteURL                string         `json:"websiteURL"`
	GT                        string         `json:"gt"`
	Challenge                 string         `json:"challenge"`
	GeetestAPIServerSubdomain string         `json:"geetestApiServerSubdomain,omitempty"`
	GeetestGetLib             string         `json:"geetestGetLib,omitempty"`
	Version                   int            `json:"version,omitempty"`
	InitParameters            map[string]any `json:"initParameters,omitempty"`
	*Proxy
}

func (t GeeTest) Type() TaskType {
	return proxyTag(t.Proxy, TypeGeeTest, TypeGeeTestProxyless)
}
func (GeeTest) isTask() {}

func (t GeeTest) MarshalJSON() ([]byte, error) {
	type plain GeeTest
	return marshalTagged(t.Type(), plain(t))
}

// CustomForm is one answer field of a CustomCaptcha task.
type CustomForm struct {
	Label        string `json:"label"`
	LabelHint    string `json:"labelHint,omitempty"`
	ContentType  string `json:"contentType,omitempty"`
	Name         string `json:"name"`
	InputType    string `json:"inputType"`
	InputOptions any    `json:"inputOptions,omitempty"`
}

// CustomCaptcha shows ImageURL to a worker together with a free-form assignment.
type CustomCaptcha struct {
	ImageURL   string       `json:"imageUrl"`
	Assignment string       `json:"assignment,omitempty"`
	Forms      []CustomForm `json:"forms,omitempty"`
}

func (CustomCaptcha) Type() TaskType { return TypeCustomCaptcha }
func (CustomCaptcha) isTask()        {}

func (t CustomCaptcha) MarshalJSON() ([]byte, error) {
	type plain CustomCaptcha
	return marshalTagged(t.Type(), plain(t))
}
