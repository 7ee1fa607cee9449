package csg

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/gridpulse/csgstat/internal/model"
)

const (
	defaultBaseURL = "https://95598.csg.cn/ucs/ma/zt"

	// Provider business status codes.
	staOK          = "00"
	staNotLoggedIn = "04"
)

// Client exposes the provider data-fetch operations the refresh engine
// consumes. Every operation either succeeds with a structured result,
// fails with *APIError or ErrNotLoggedIn, or fails with an unclassified
// error.
type Client interface {
	VerifyLogin(ctx context.Context) (bool, error)
	BalanceAndArrears(ctx context.Context, acct Account) (BalanceResult, error)
	YesterdayKWh(ctx context.Context, acct Account) (float64, error)
	YearMonthStats(ctx context.Context, acct Account, year int) (YearStats, error)
	MonthDailyUsage(ctx context.Context, acct Account, ym model.YearMonth) (MonthUsage, error)
	MonthDailyCost(ctx context.Context, acct Account, ym model.YearMonth) (MonthCost, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit overrides the default request rate limit.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

type httpClient struct {
	token   string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a provider client authenticated with a session token.
// The provider throttles aggressively and one refresh cycle issues up to
// seven calls per account, so requests are rate limited client-side.
func NewClient(token string, opts ...Option) Client {
	c := &httpClient{
		token:   token,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Limit(2), 4),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// envelope is the provider's response wrapper. Sta "00" is success; "04"
// means the session token was rejected.
type envelope struct {
	Sta     string          `json:"sta"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *httpClient) post(ctx context.Context, path string, payload, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return eris.Wrap(err, "csg: rate limit wait")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return eris.Wrap(err, "csg: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return eris.Wrap(err, "csg: create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Auth-Token", c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "csg: send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "csg: read response")
	}
	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("csg: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return eris.Wrap(err, "csg: unmarshal envelope")
	}
	switch env.Sta {
	case staOK:
	case staNotLoggedIn:
		return ErrNotLoggedIn
	default:
		return &APIError{Code: env.Sta, Message: env.Message}
	}

	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return eris.Wrapf(err, "csg: unmarshal data for %s", path)
		}
	}
	return nil
}

// The provider encodes every number as a string.
func parseFloat(s, what string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, eris.Wrapf(err, "csg: parse %s %q", what, s)
	}
	return v, nil
}

func (c *httpClient) VerifyLogin(ctx context.Context) (bool, error) {
	var data struct {
		Valid bool `json:"valid"`
	}
	err := c.post(ctx, "/center/queryAuthenticationResult", map[string]any{}, &data)
	if errors.Is(err, ErrNotLoggedIn) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return data.Valid, nil
}

func (c *httpClient) BalanceAndArrears(ctx context.Context, acct Account) (BalanceResult, error) {
	var data struct {
		Balance string `json:"balance"`
		Arrears string `json:"arrears"`
	}
	err := c.post(ctx, "/charge/queryUserAccountNumberSurplus", map[string]any{
		"areaCode":  acct.AreaCode,
		"eleCustId": acct.Number,
	}, &data)
	if err != nil {
		return BalanceResult{}, err
	}

	var res BalanceResult
	if res.Balance, err = parseFloat(data.Balance, "balance"); err != nil {
		return BalanceResult{}, err
	}
	if res.Arrears, err = parseFloat(data.Arrears, "arrears"); err != nil {
		return BalanceResult{}, err
	}
	return res, nil
}

func (c *httpClient) YesterdayKWh(ctx context.Context, acct Account) (float64, error) {
	var data struct {
		Power string `json:"power"`
	}
	err := c.post(ctx, "/elec/queryDayElectricByMPointYesterday", map[string]any{
		"areaCode":        acct.AreaCode,
		"eleCustId":       acct.Number,
		"meteringPointId": acct.MeteringPoint,
	}, &data)
	if err != nil {
		return 0, err
	}
	return parseFloat(data.Power, "yesterday power")
}

func (c *httpClient) YearMonthStats(ctx context.Context, acct Account, year int) (YearStats, error) {
	var data struct {
		TotalPower        string `json:"totalPower"`
		TotalElectricity  string `json:"totalElectricity"`
		ElectricAndCharge []struct {
			YearMonth   string `json:"yearMonth"`
			Power       string `json:"power"`
			Electricity string `json:"electricity"`
		} `json:"electricAndChargeList"`
	}
	err := c.post(ctx, "/elec/queryElectricityBillsByYear", map[string]any{
		"areaCode":  acct.AreaCode,
		"eleCustId": acct.Number,
		"year":      strconv.Itoa(year),
	}, &data)
	if err != nil {
		return YearStats{}, err
	}

	var stats YearStats
	if stats.TotalKWh, err = parseFloat(data.TotalPower, "year total power"); err != nil {
		return YearStats{}, err
	}
	if stats.TotalCost, err = parseFloat(data.TotalElectricity, "year total charge"); err != nil {
		return YearStats{}, err
	}
	for _, m := range data.ElectricAndCharge {
		t, err := time.Parse("2006-01", m.YearMonth)
		if err != nil {
			return YearStats{}, eris.Wrapf(err, "csg: parse year-month %q", m.YearMonth)
		}
		kwh, err := parseFloat(m.Power, "month power")
		if err != nil {
			return YearStats{}, err
		}
		cost, err := parseFloat(m.Electricity, "month charge")
		if err != nil {
			return YearStats{}, err
		}
		stats.ByMonth = append(stats.ByMonth, model.MonthlyRecord{
			Year:  t.Year(),
			Month: t.Month(),
			KWh:   kwh,
			Cost:  cost,
		})
	}
	return stats, nil
}

func (c *httpClient) MonthDailyUsage(ctx context.Context, acct Account, ym model.YearMonth) (MonthUsage, error) {
	var data struct {
		TotalPower string `json:"totalPower"`
		Result     []struct {
			Date  string `json:"date"`
			Power string `json:"power"`
		} `json:"result"`
	}
	err := c.post(ctx, "/elec/queryDayElectricByMPoint", map[string]any{
		"areaCode":        acct.AreaCode,
		"eleCustId":       acct.Number,
		"meteringPointId": acct.MeteringPoint,
		"yearMonth":       formatYearMonth(ym),
	}, &data)
	if err != nil {
		return MonthUsage{}, err
	}

	var usage MonthUsage
	if usage.TotalKWh, err = parseFloat(data.TotalPower, "month total power"); err != nil {
		return MonthUsage{}, err
	}
	for _, d := range data.Result {
		date, err := model.ParseDate(d.Date)
		if err != nil {
			return MonthUsage{}, err
		}
		kwh, err := parseFloat(d.Power, "day power")
		if err != nil {
			return MonthUsage{}, err
		}
		usage.ByDay = append(usage.ByDay, model.DailyRecord{Date: date, KWh: kwh})
	}
	return usage, nil
}

func (c *httpClient) MonthDailyCost(ctx context.Context, acct Account, ym model.YearMonth) (MonthCost, error) {
	var data struct {
		TotalElectricity string `json:"totalElectricity"`
		TotalPower       string `json:"totalPower"`
		Ladder           *struct {
			Stage        *int    `json:"ladder"`
			RemainingKWh *string `json:"remainingPower"`
			Tariff       *string `json:"tariff"`
			StartDate    *string `json:"startDate"`
		} `json:"ladder"`
		Result []struct {
			Date        string `json:"date"`
			Power       string `json:"power"`
			Electricity string `json:"electricity"`
		} `json:"result"`
	}
	err := c.post(ctx, "/elec/queryChargesByMonth", map[string]any{
		"areaCode":  acct.AreaCode,
		"eleCustId": acct.Number,
		"yearMonth": formatYearMonth(ym),
	}, &data)
	if err != nil {
		return MonthCost{}, err
	}

	var cost MonthCost
	if cost.TotalCost, err = parseFloat(data.TotalElectricity, "month total charge"); err != nil {
		return MonthCost{}, err
	}
	if cost.TotalKWh, err = parseFloat(data.TotalPower, "month total power"); err != nil {
		return MonthCost{}, err
	}

	if data.Ladder != nil {
		ladder := &Ladder{Stage: data.Ladder.Stage}
		if data.Ladder.RemainingKWh != nil {
			v, err := parseFloat(*data.Ladder.RemainingKWh, "ladder remaining power")
			if err != nil {
				return MonthCost{}, err
			}
			ladder.RemainingKWh = &v
		}
		if data.Ladder.Tariff != nil {
			v, err := parseFloat(*data.Ladder.Tariff, "ladder tariff")
			if err != nil {
				return MonthCost{}, err
			}
			ladder.Tariff = &v
		}
		if data.Ladder.StartDate != nil {
			d, err := model.ParseDate(*data.Ladder.StartDate)
			if err != nil {
				return MonthCost{}, err
			}
			ladder.StartDate = &d
		}
		cost.Ladder = ladder
	}

	for _, d := range data.Result {
		date, err := model.ParseDate(d.Date)
		if err != nil {
			return MonthCost{}, err
		}
		kwh, err := parseFloat(d.Power, "day power")
		if err != nil {
			return MonthCost{}, err
		}
		charge, err := parseFloat(d.Electricity, "day charge")
		if err != nil {
			return MonthCost{}, err
		}
		cost.ByDay = append(cost.ByDay, model.DailyRecord{Date: date, KWh: kwh, Cost: &charge})
	}
	return cost, nil
}

func formatYearMonth(ym model.YearMonth) string {
	return time.Date(ym.Year, ym.Month, 1, 0, 0, 0, 0, time.UTC).Format("200601")
}
