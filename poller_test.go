package anticaptcha

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const readyBody = `{"errorId":0,"status":"ready","solution":{"gRecaptchaResponse":"03AHJ_Vuve5Asa4koK3KSMyUkCq0vUFCR5Im4CwB7PzO3dCxIo11i53epEraq-uBO5mVm2XRikL8iKOWr0aG50sCuej9bXx5qcviUGSm4iK4NC_Q88flavWhaTXSh0VxoihBwBjXxwXuJZ-WGN5Sy4dtUl2wbpMqAj8Zwup1vyCaQJWFvRjYGWJ_TQBKTXNB5CCOgncqLetmJ6B6Cos7qoQyaB8ZzBOTGf5KSP6e-K9niYs772f53Oof6aJeSUDNjiKG9gN3FTrdwKwdnAwEYX-F37sI_vLB1Zs8NQo0PObHYy0b0sf7WSLkzzcIgW9GR0FwcCCm1P8lB-50GQHPEBJUHNnhJyDzwRoRAkVzrf7UkV8wKCdTwrrWqiYDgbrzURfHc2ESsp020MicJTasSiXmNRgryt-gf50q5BMkiRH7osm4DoUgsjc_XyQiEmQmxl5sqZP7aKsaE-EM00x59XsPzD3m3YI6SRCFRUevSyumBd7KmXE8VuzIO9lgnnbka4-eZynZa6vbB9cO3QjLH0xSG3-egcplD1uLGh79wC34RF49Ui3eHwua4S9XHpH6YBe7gXzz6_mv-o-fxrOuphwfrtwvvi2FGfpTexWvxhqWICMFTTjFBCEGEgj7_IFWEKirXW2RTZCVF0Gid7EtIsoEeZkPbrcUISGmgtiJkJ_KojuKwImF0G0CsTlxYTOU2sPsd5o1JDt65wGniQR2IZufnPbbK76Yh_KI2DY4cUxMfcb2fAXcFMc9dcpHg6f9wBXhUtFYTu6pi5LhhGuhpkiGcv6vWYNxMrpWJW_pV7q8mPilwkAP-zw5MJxkgijl2wDMpM-UUQ_k37FVtf-ndbQAIPG7S469doZMmb5IZYgvcB4ojqCW3Vz6Q","cookies":{}},"cost":"0.001500","ip":"46.98.54.221","createTime":1472205564,"endTime":1472205570,"solveCount":"0"}`

func TestWaitForResult_ReadyAfterProcessing(t *testing.T) {
	const maxRetries = 3
	for n := 0; n <= maxRetries; n++ {
		t.Run(fmt.Sprintf("%d processing", n), func(t *testing.T) {
			f := newFakeAPI(t)
			for range n {
				f.reply("getTaskResult", processingBody)
			}
			f.reply("getTaskResult", `{"errorId":0,"status":"ready","solution":{"text":"deditur","url":"http://61.39.233.233/1/147220556452507.jpg"},"cost":"0.000700","ip":"46.98.54.221","createTime":1472205564,"endTime":1472205570,"solveCount":1}`)
			c := newTestClient(t, f)

			res, err := c.WaitForResult(context.Background(), 42, PollOptions{MaxRetries: maxRetries})
			require.NoError(t, err)
			assert.Equal(t, "deditur", res.Solution.Text)
			assert.Equal(t, n+1, f.callCount("getTaskResult"))
			assert.Equal(t, float64(42), f.lastCall(t, "getTaskResult")["taskId"])
		})
	}
}

func TestWaitForResult_Timeout(t *testing.T) {
	f := newFakeAPI(t)
	f.reply("getTaskResult", processingBody)
	c := newTestClient(t, f)

	_, err := c.WaitForResult(context.Background(), 42, PollOptions{MaxRetries: 2})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)

	var te *TimeoutError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, int64(42), te.TaskID)

	calls := f.callCount("getTaskResult")
	assert.Equal(t, 3, calls)

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, calls, f.callCount("getTaskResult"), "no query may follow a timeout")
}

func TestWaitForResult_QueryFailureStopsPoll(t *testing.T) {
	f := newFakeAPI(t)
	f.reply("getTaskResult",
		processingBody,
		`{"errorId":16,"errorCode":"ERROR_NO_SUCH_CAPCHA_ID","errorDescription":"Captcha you are requesting does not exist in your current captchas list or has been expired."}`,
		readyBody,
	)
	c := newTestClient(t, f)

	_, err := c.WaitForResult(context.Background(), 42, PollOptions{MaxRetries: 10})
	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Contains(t, remote.Description, "does not exist")
	assert.ErrorIs(t, err, ErrTaskNotFound)

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 2, f.callCount("getTaskResult"))
}

func TestWaitForResult_TransportFailure(t *testing.T) {
	f := newFakeAPI(t)
	c := newTestClient(t, f) // no replies: the fake answers 404

	_, err := c.WaitForResult(context.Background(), 42, PollOptions{MaxRetries: 10})
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Contains(t, err.Error(), "HTTP request to getTaskResult failed")
	assert.Equal(t, 1, f.callCount("getTaskResult"))
}

func TestWaitForResult_ContextCanceled(t *testing.T) {
	f := newFakeAPI(t)
	f.reply("getTaskResult", processingBody)
	c := newTestClient(t, f)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := c.WaitForResult(ctx, 42, PollOptions{MaxRetries: 5, Interval: time.Hour})
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)
	assert.Equal(t, 0, f.callCount("getTaskResult"))
}

func TestGetTaskResult_Decoding(t *testing.T) {
	f := newFakeAPI(t)
	f.reply("getTaskResult", readyBody)
	c := newTestClient(t, f)

	res, err := c.GetTaskResult(context.Background(), 42)
	require.NoError(t, err)
	assert.True(t, res.Ready())
	assert.InDelta(t, 0.0015, float64(res.Cost), 1e-12)
	assert.Equal(t, "46.98.54.221", res.IP)
	assert.Equal(t, int64(1472205564), res.CreateTime)
	assert.Equal(t, int64(1472205570), res.EndTime)
	assert.True(t, len(res.Solution.GRecaptchaResponse) > 100)
	assert.Contains(t, string(res.Solution.Raw), `"cookies":{}`)
}

func TestGetTaskResult_UnexpectedStatus(t *testing.T) {
	f := newFakeAPI(t)
	f.reply("getTaskResult", `{"errorId":0,"status":"queued"}`)
	c := newTestClient(t, f)

	_, err := c.GetTaskResult(context.Background(), 42)
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Contains(t, err.Error(), `unexpected status "queued"`)
}

func TestGetTaskResult_WrapsErrors(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"remote error", `{"errorId":16,"errorCode":"ERROR_NO_SUCH_CAPCHA_ID","errorDescription":"Captcha you are requesting does not exist"}`},
		{"unexpected status", `{"errorId":0,"status":"queued"}`},
		{"bad json", `{"errorId":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeAPI(t)
			f.reply("getTaskResult", tt.reply)
			c := newTestClient(t, f)

			_, err := c.GetTaskResult(context.Background(), 42)
			require.Error(t, err)
			assert.True(t, strings.HasPrefix(err.Error(), "getTaskResult: "), "got %q", err.Error())
		})
	}

	f := newFakeAPI(t)
	f.reply("getTaskResult", `{"errorId":16,"errorCode":"ERROR_NO_SUCH_CAPCHA_ID","errorDescription":"x"}`)
	_, err := newTestClient(t, f).GetTaskResult(context.Background(), 42)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestPollOptionsDefaults(t *testing.T) {
	got := PollOptions{}.withDefaults(PollOptions{Interval: time.Second}).withDefaults(defaultPoll)
	assert.Equal(t, PollOptions{MaxRetries: 12, Interval: time.Second}, got)
}
