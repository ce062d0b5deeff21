// Package edapi is a client for the subset of the Ed Discussion REST api that
// the archiver needs: the current user, course thread listings, single threads
// and the files threads link to.
package edapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"edarchive/internal/components/assert"
	"edarchive/internal/components/telemetry"
	"edarchive/pkg/restyutil"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

var tracer = otel.Tracer("edarchive/edapi")

const (
	report_client_login        = "client.login"
	report_client_list_threads = "client.list-threads"
	report_client_get_thread   = "client.get-thread"
	report_client_download     = "client.download"
)

const DefaultBaseUrl = "https://us.edstem.org/api"

var ErrMissingToken = fmt.Errorf("edapi: no api token, set ED_API_TOKEN or the token field of the config")

type ClientOptions struct {
	BaseUrl string
	Token   string
	// RequestsPerSecond is 2 when unset, a negative value disables rate limiting.
	RequestsPerSecond float64
	// Dump receives every api exchange when set.
	Dump restyutil.Output
}

type Client struct {
	Http  *resty.Client
	Files *resty.Client

	tel telemetry.API
}

func NewClient(opts ClientOptions, tel telemetry.API) (*Client, error) {
	assert.NotNil(tel)
	if opts.Token == "" {
		return nil, ErrMissingToken
	}
	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}

	tel = telemetry.NewScopedAPI("edapi", tel)

	limit := rate.Limit(2)
	switch {
	case opts.RequestsPerSecond < 0:
		limit = rate.Inf
	case opts.RequestsPerSecond > 0:
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	// max burst >= 2 just means that no requests will be dropped
	rateLimiter := rate.NewLimiter(limit, 2)
	waitForLimit := func(_ *resty.Client, req *resty.Request) error {
		return rateLimiter.Wait(req.Context())
	}

	httpClient := resty.New()
	httpClient.SetBaseURL(opts.BaseUrl)
	httpClient.SetAuthToken(opts.Token)
	httpClient.SetHeader("user-agent", "edarchive/1.0")
	httpClient.SetHeader("accept", "application/json")
	httpClient.SetTimeout(time.Second * 30)
	httpClient.OnBeforeRequest(waitForLimit)
	telemetry.InstrumentResty(httpClient, tel)
	if opts.Dump != nil {
		restyutil.Dump(httpClient, opts.Dump)
	}

	// attachments live on a separate static host, the token is still sent
	// since course files may require it.
	files := resty.New()
	files.SetAuthToken(opts.Token)
	files.SetHeader("user-agent", "edarchive/1.0")
	files.SetTimeout(time.Second * 60)
	files.OnBeforeRequest(waitForLimit)
	telemetry.InstrumentResty(files, tel)

	return &Client{
		Http:  httpClient,
		Files: files,
		tel:   tel,
	}, nil
}

func statusError(res *resty.Response) error {
	return fmt.Errorf("unexpected status %s", res.Status())
}

// Login checks the token by fetching the account it belongs to.
func (c *Client) Login(ctx context.Context) (User, error) {
	ctx, span := tracer.Start(ctx, "client:Login")
	defer span.End()

	loginError := func(err error) error {
		span.RecordError(err)
		span.SetStatus(codes.Error, "login failed")
		c.tel.ReportBroken(report_client_login, err)
		return fmt.Errorf("edapi: login failed: %w", err)
	}

	res, err := c.Http.R().
		SetContext(ctx).
		Get("/user")
	if err != nil {
		return User{}, loginError(fmt.Errorf("fetch: %w", err))
	}
	if res.IsError() {
		return User{}, loginError(statusError(res))
	}

	var body struct {
		User User `json:"user"`
	}
	err = json.Unmarshal(res.Body(), &body)
	if err != nil {
		return User{}, loginError(fmt.Errorf("decode: %w", err))
	}
	return body.User, nil
}

// ListThreads fetches a single page of a course's threads, newest first.
func (c *Client) ListThreads(ctx context.Context, courseId int64, offset, limit int) (ListPage, error) {
	ctx, span := tracer.Start(ctx, "client:ListThreads")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("course_id", courseId),
		attribute.Int("offset", offset),
		attribute.Int("limit", limit),
	)

	listError := func(err error) (ListPage, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list threads failed")
		c.tel.ReportBroken(report_client_list_threads, err, courseId, offset)
		return ListPage{Total: -1}, err
	}

	res, err := c.Http.R().
		SetContext(ctx).
		SetPathParam("courseId", strconv.FormatInt(courseId, 10)).
		SetQueryParams(map[string]string{
			"limit":  strconv.Itoa(limit),
			"offset": strconv.Itoa(offset),
			"sort":   "new",
		}).
		Get("/courses/{courseId}/threads")
	if err != nil {
		return listError(fmt.Errorf("fetch: %w", err))
	}
	if res.IsError() {
		return listError(statusError(res))
	}

	page, err := decodeThreadList(res.Body())
	if err != nil {
		return listError(err)
	}
	for _, skipped := range page.Skipped {
		c.tel.ReportWarning(report_client_list_threads, fmt.Errorf("decode thread: %w", skipped), offset)
	}
	return page, nil
}

// ListAllThreads pages through a course's threads until a page comes back
// shorter than pageSize or the offset passes maxOffset. A failing first page is
// returned as an error, a later failure ends the listing early with what was
// collected so far.
func (c *Client) ListAllThreads(ctx context.Context, courseId int64, pageSize, maxOffset int) ([]Thread, error) {
	if pageSize <= 0 {
		pageSize = 100
	}

	var all []Thread
	offset := 0
	for {
		c.tel.ReportDebug("fetching thread page", courseId, offset)

		page, err := c.ListThreads(ctx, courseId, offset, pageSize)
		if err != nil {
			if offset == 0 {
				return nil, err
			}
			break
		}
		if page.Count == 0 {
			break
		}
		if page.Total >= 0 && offset == 0 {
			c.tel.ReportCount("threads.available", page.Total)
		}

		all = append(all, page.Threads...)
		if page.Count < pageSize {
			break
		}

		offset += page.Count
		if maxOffset > 0 && offset > maxOffset {
			c.tel.ReportWarning(report_client_list_threads, fmt.Errorf("stopped paging at offset %d", offset))
			break
		}
	}

	c.tel.ReportCount("threads.fetched", int64(len(all)))
	return all, nil
}

// GetThread fetches the full document of a thread by its id.
func (c *Client) GetThread(ctx context.Context, threadId int64) (Thread, error) {
	ctx, span := tracer.Start(ctx, "client:GetThread")
	defer span.End()
	span.SetAttributes(attribute.Int64("thread_id", threadId))

	getError := func(err error) (Thread, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "get thread failed")
		c.tel.ReportBroken(report_client_get_thread, err, threadId)
		return Thread{}, err
	}

	res, err := c.Http.R().
		SetContext(ctx).
		SetPathParam("threadId", strconv.FormatInt(threadId, 10)).
		Get("/threads/{threadId}")
	if err != nil {
		return getError(fmt.Errorf("fetch: %w", err))
	}
	if res.IsError() {
		return getError(statusError(res))
	}

	thread, err := decodeThread(res.Body())
	if err != nil {
		return getError(fmt.Errorf("decode: %w", err))
	}
	return thread, nil
}

// Download streams the file at `link` into `dest`. The body goes to a
// temporary file first so an interrupted download never leaves a partial file
// at `dest`.
func (c *Client) Download(ctx context.Context, link, dest string) (int64, error) {
	ctx, span := tracer.Start(ctx, "client:Download")
	defer span.End()
	span.SetAttributes(attribute.String("url", link))

	downloadError := func(err error) (int64, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "download failed")
		c.tel.ReportWarning(report_client_download, err, link)
		return 0, err
	}

	res, err := c.Files.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(link)
	if err != nil {
		return downloadError(fmt.Errorf("fetch: %w", err))
	}
	body := res.RawBody()
	defer body.Close()

	if res.StatusCode() != http.StatusOK {
		return downloadError(fmt.Errorf("HTTP %d", res.StatusCode()))
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".download-*")
	if err != nil {
		return downloadError(err)
	}
	written, err := io.Copy(tmp, body)
	closeErr := tmp.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return downloadError(fmt.Errorf("copy body: %w", err))
	}

	err = os.Rename(tmp.Name(), dest)
	if err != nil {
		os.Remove(tmp.Name())
		return downloadError(err)
	}

	c.tel.ReportDebug("downloaded", filepath.Base(dest), written)
	return written, nil
}
