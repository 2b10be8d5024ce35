package anticaptcha

import (
	"context"
	"fmt"

	stealth "github.com/anatolykoptev/go-stealth"
)

// ImageOptions are the optional recognition hints of an ImageToText task.
type ImageOptions struct {
	Phrase    bool
	Case      bool
	Numeric   NumericOption
	Math      bool
	MinLength int
	MaxLength int
	Comment   string
}

// ImageToText submits a base64 encoded image for OCR.
func (c *Client) ImageToText(ctx context.Context, body string, img ImageOptions, opts ...TaskOption) (int64, error) {
	return c.CreateTask(ctx, ImageToText{
		Body:      body,
		Phrase:    img.Phrase,
		Case:      img.Case,
		Numeric:   img.Numeric,
		Math:      img.Math,
		MinLength: img.MinLength,
		MaxLength: img.MaxLength,
		Comment:   img.Comment,
	}, opts...)
}

// RecaptchaV2 submits a reCAPTCHA v2 challenge. A non-nil proxy selects
// RecaptchaV2Task, nil selects RecaptchaV2TaskProxyless.
func (c *Client) RecaptchaV2(ctx context.Context, websiteURL, websiteKey string, proxy *Proxy, invisible bool, opts ...TaskOption) (int64, error) {
	p, err := taskProxy(proxy)
	if err != nil {
		return 0, err
	}
	return c.CreateTask(ctx, RecaptchaV2{
		WebsiteURL:  websiteURL,
		WebsiteKey:  websiteKey,
		IsInvisible: invisible,
		Proxy:       p,
	}, opts...)
}

// RecaptchaV3Options describes a reCAPTCHA v3 challenge.
type RecaptchaV3Options struct {
	WebsiteURL string
	WebsiteKey string
	// MinScore is one of 0.3, 0.7 or 0.9.
	MinScore     float64
	PageAction   string
	IsEnterprise bool
	APIDomain    string
}

// RecaptchaV3 submits a reCAPTCHA v3 challenge.
func (c *Client) RecaptchaV3(ctx context.Context, o RecaptchaV3Options, opts ...TaskOption) (int64, error) {
	return c.CreateTask(ctx, RecaptchaV3{
		WebsiteURL:   o.WebsiteURL,
		WebsiteKey:   o.WebsiteKey,
		MinScore:     o.MinScore,
		PageAction:   o.PageAction,
		IsEnterprise: o.IsEnterprise,
		APIDomain:    o.APIDomain,
	}, opts...)
}

// RecaptchaV2Enterprise submits a reCAPTCHA v2 Enterprise challenge.
func (c *Client) RecaptchaV2Enterprise(ctx context.Context, websiteURL, websiteKey string, payload map[string]any, proxy *Proxy, opts ...TaskOption) (int64, error) {
	p, err := taskProxy(proxy)
	if err != nil {
		return 0, err
	}
	return c.CreateTask(ctx, RecaptchaV2Enterprise{
		WebsiteURL:        websiteURL,
		WebsiteKey:        websiteKey,
		EnterprisePayload: payload,
		Proxy:             p,
	}, opts...)
}

// FunCaptcha submits an Arkose Labs challenge identified by its public key.
func (c *Client) FunCaptcha(ctx context.Context, websiteURL, publicKey string, proxy *Proxy, opts ...TaskOption) (int64, error) {
	p, err := taskProxy(proxy)
	if err != nil {
		return 0, err
	}
	return c.CreateTask(ctx, FunCaptcha{
		WebsiteURL:       websiteURL,
		WebsitePublicKey: publicKey,
		Proxy:            p,
	}, opts...)
}

// GeeTest submits a GeeTest challenge.
func (c *Client) GeeTest(ctx context.Context, websiteURL, gt, challenge string, proxy *Proxy, opts ...TaskOption) (int64, error) {
	p, err := taskProxy(proxy)
	if err != nil {
		return 0, err
	}
	return c.CreateTask(ctx, GeeTest{
		WebsiteURL: websiteURL,
		GT:         gt,
		Challenge:  challenge,
		Proxy:      p,
	}, opts...)
}

// SquareNetText submits a grid image where workers pick the cells showing objectName.
func (c *Client) SquareNetText(ctx context.Context, body, objectName string, rows, columns int, opts ...TaskOption) (int64, error) {
	return c.CreateTask(ctx, SquareNetText{
		Body:         body,
		ObjectName:   objectName,
		RowsCount:    rows,
		ColumnsCount: columns,
	}, opts...)
}

// CustomCaptcha submits an image with a free-form assignment and answer forms.
func (c *Client) CustomCaptcha(ctx context.Context, imageURL, assignment string, forms []CustomForm, opts ...TaskOption) (int64, error) {
	return c.CreateTask(ctx, CustomCaptcha{
		ImageURL:   imageURL,
		Assignment: assignment,
		Forms:      forms,
	}, opts...)
}

// ResolveImage submits an image task and waits for its text.
func (c *Client) ResolveImage(ctx context.Context, body string, img ImageOptions, opts ...TaskOption) (*TaskResult, error) {
	taskID, err := c.ImageToText(ctx, body, img, opts...)
	if err != nil {
		return nil, err
	}
	return c.poll(ctx, taskID, c.cfg.Poll.withDefaults(resolvePoll))
}

// ResolveRecaptchaV2 submits a reCAPTCHA v2 task and waits for its response token.
func (c *Client) ResolveRecaptchaV2(ctx context.Context, websiteURL, websiteKey string, proxy *Proxy, opts ...TaskOption) (*TaskResult, error) {
	taskID, err := c.RecaptchaV2(ctx, websiteURL, websiteKey, proxy, false, opts...)
	if err != nil {
		return nil, err
	}
	return c.poll(ctx, taskID, c.cfg.Poll.withDefaults(resolvePoll))
}

// taskProxy validates proxy and returns a copy whose empty UserAgent is
// replaced by a current desktop browser UA. nil stays nil.
func taskProxy(proxy *Proxy) (*Proxy, error) {
	if proxy == nil {
		return nil, nil
	}
	if err := proxy.Validate(); err != nil {
		return nil, fmt.Errorf("task proxy: %w", err)
	}
	p := *proxy
	if p.UserAgent == "" {
		p.UserAgent = stealth.BuiltinProfiles[0].UserAgent
	}
	return &p, nil
}
