package google

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/googleapi"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"dompet/internal/core"
	"dompet/internal/log"
	ports "dompet/internal/sheets"
)

const lastColumn = "I"

var _ ports.Ledger = (*Client)(nil)

// Options configures the spreadsheet ledger. Credentials are taken from the
// first of CredentialsJSON, CredentialsFile, or ClientEmail plus PrivateKey.
type Options struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
	ClientEmail     string
	PrivateKey      string

	// Requests rejected with 429 are retried up to RetryAttempts times.
	RetryAttempts uint
	RetryDelay    time.Duration
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	attempts      uint
	delay         time.Duration
	logger        *log.Logger
}

// New authenticates and returns a ledger client for one sheet.
func New(ctx context.Context, opts Options, logger *log.Logger) (*Client, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if strings.TrimSpace(opts.SheetName) == "" {
		return nil, errors.New("missing sheet name")
	}

	clientOpts, err := credentialOptions(ctx, opts)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return NewWithService(svc, opts, logger), nil
}

// NewWithService wraps an existing service.
func NewWithService(svc *gsheet.Service, opts Options, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	attempts := opts.RetryAttempts
	if attempts == 0 {
		attempts = 3
	}
	delay := opts.RetryDelay
	if delay <= 0 {
		delay = 2 * time.Second
	}
	return &Client{
		svc:           svc,
		spreadsheetID: opts.SpreadsheetID,
		sheetName:     opts.SheetName,
		attempts:      attempts,
		delay:         delay,
		logger:        logger.WithComponent(log.ComponentSheets),
	}
}

func credentialOptions(ctx context.Context, opts Options) ([]goption.ClientOption, error) {
	switch {
	case strings.TrimSpace(opts.CredentialsJSON) != "":
		return []goption.ClientOption{
			goption.WithCredentialsJSON([]byte(opts.CredentialsJSON)),
			goption.WithScopes(gsheet.SpreadsheetsScope),
		}, nil
	case strings.TrimSpace(opts.CredentialsFile) != "":
		data, err := os.ReadFile(opts.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return []goption.ClientOption{
			goption.WithCredentialsJSON(data),
			goption.WithScopes(gsheet.SpreadsheetsScope),
		}, nil
	case opts.ClientEmail != "" && opts.PrivateKey != "":
		conf := &jwt.Config{
			Email:      opts.ClientEmail,
			PrivateKey: []byte(unescapeKey(opts.PrivateKey)),
			Scopes:     []string{gsheet.SpreadsheetsScope},
			TokenURL:   google.JWTTokenURL,
		}
		hc := conf.Client(context.WithValue(ctx, oauth2.HTTPClient, newHTTPClient()))
		return []goption.ClientOption{goption.WithHTTPClient(hc)}, nil
	}
	return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_SHEETS_CLIENT_EMAIL and GOOGLE_SHEETS_PRIVATE_KEY)")
}

// Private keys pasted into env files usually carry literal "\n".
func unescapeKey(key string) string {
	return strings.ReplaceAll(key, `\n`, "\n")
}

// newHTTPClient is the transport used for token and API calls.
func newHTTPClient() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ForceAttemptHTTP2:     true,
	}
	return &http.Client{Transport: transport, Timeout: 60 * time.Second}
}

// a1 quotes the sheet name so names with spaces are valid.
func (c *Client) a1(rng string) string {
	return fmt.Sprintf("'%s'!%s", strings.ReplaceAll(c.sheetName, "'", "''"), rng)
}

// EnsureHeaders writes the header row when A1:I1 is empty.
func (c *Client) EnsureHeaders(ctx context.Context) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	rng := c.a1("A1:" + lastColumn + "1")
	var resp *gsheet.ValueRange
	err := c.withRetry(ctx, func() error {
		var err error
		resp, err = c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("read header %s: %w", rng, err)
	}
	if len(resp.Values) > 0 && len(resp.Values[0]) > 0 {
		return nil
	}

	vr := &gsheet.ValueRange{Values: [][]any{ports.HeaderRow()}}
	err = c.withRetry(ctx, func() error {
		_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
			ValueInputOption("RAW").Context(ctx).Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("write header %s: %w", rng, err)
	}
	c.logger.InfoContext(ctx, "Initialized ledger header row", "sheet", c.sheetName)
	return nil
}

// Append adds one row after the last used row and returns the updated range.
func (c *Client) Append(ctx context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	rng := c.a1("A:" + lastColumn)
	vr := &gsheet.ValueRange{Values: [][]any{ports.EncodeRow(tx)}}

	var resp *gsheet.AppendValuesResponse
	err := c.withRetry(ctx, func() error {
		var err error
		resp, err = c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
			ValueInputOption("RAW").
			InsertDataOption("INSERT_ROWS").
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", c.sheetName, err)
	}

	ref := rng
	if resp != nil && resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}
	return ref, nil
}

// ReadRange reads data rows first..last; sheet row n+1 holds data row n.
func (c *Client) ReadRange(ctx context.Context, first, last int) ([]core.Transaction, error) {
	if first < 1 || last < first {
		return nil, fmt.Errorf("invalid row range %d..%d", first, last)
	}
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}

	rng := c.a1(fmt.Sprintf("A%d:%s%d", first+1, lastColumn, last+1))
	var resp *gsheet.ValueRange
	err := c.withRetry(ctx, func() error {
		var err error
		resp, err = c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).
			ValueRenderOption("UNFORMATTED_VALUE").
			DateTimeRenderOption("SERIAL_NUMBER").
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}

	out := make([]core.Transaction, 0, len(resp.Values))
	for _, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		out = append(out, ports.DecodeRow(row))
	}
	c.logger.DebugContext(ctx, "Read ledger rows", log.FieldRows, len(out))
	return out, nil
}

func (c *Client) withRetry(ctx context.Context, fn func() error) error {
	return retry.Do(
		fn,
		retry.RetryIf(func(err error) bool {
			if isRateLimited(err) {
				c.logger.WarnContext(ctx, "Rate limited by Sheets API, will retry", log.FieldError, err)
				return true
			}
			return false
		}),
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.LastErrorOnly(true),
	)
}

func isRateLimited(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests
}
