// services/rates.go
package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// RateService fetches the central-bank base lending rate over the bank's
// SOAP feed. The suggested financing rate is base rate plus a configured
// margin.
type RateService struct {
	url    string
	margin decimal.Decimal
	client *http.Client
}

func NewRateService() *RateService {
	margin := decimal.NewFromFloat(4.0)
	if env := os.Getenv("RATE_MARGIN"); env != "" {
		if f, err := strconv.ParseFloat(env, 64); err == nil {
			margin = decimal.NewFromFloat(f)
		}
	}
	return &RateService{
		url:    os.Getenv("CBK_RATES_URL"),
		margin: margin,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *RateService) Margin() decimal.Decimal {
	return s.margin
}

// FetchBaseRate returns the latest published base rate.
func (s *RateService) FetchBaseRate(ctx context.Context) (decimal.Decimal, error) {
	if s.url == "" {
		return decimal.Zero, fmt.Errorf("rates feed is not configured")
	}

	body, err := s.sendRequest(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	rate, err := parseKeyRate(body)
	if err != nil {
		return decimal.Zero, err
	}

	logrus.WithField("rate", rate.String()).Debug("fetched base rate")
	return rate, nil
}

// SuggestedRate is the base rate with the bank margin applied.
func (s *RateService) SuggestedRate(ctx context.Context) (decimal.Decimal, error) {
	base, err := s.FetchBaseRate(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return base.Add(s.margin), nil
}

func (s *RateService) buildSOAPRequest() string {
	fromDate := time.Now().AddDate(0, 0, -30).Format("2006-01-02")
	toDate := time.Now().Format("2006-01-02")
	return fmt.Sprintf(`<?xml version="1.0" encoding="utf-8"?>
		<soap12:Envelope xmlns:soap12="http://www.w3.org/2003/05/soap-envelope">
			<soap12:Body>
				<KeyRate xmlns="http://web.cbr.ru/">
					<fromDate>%s</fromDate>
					<ToDate>%s</ToDate>
				</KeyRate>
			</soap12:Body>
		</soap12:Envelope>`, fromDate, toDate)
}

func (s *RateService) sendRequest(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", s.url, bytes.NewBufferString(s.buildSOAPRequest()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/soap+xml; charset=utf-8")
	req.Header.Set("SOAPAction", "http://web.cbr.ru/KeyRate")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rates request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}

// parseKeyRate extracts the most recent rate entry from the feed's
// diffgram. The first KR element is the latest published value.
func parseKeyRate(rawBody []byte) (decimal.Decimal, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(rawBody); err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse XML: %w", err)
	}

	krElements := doc.FindElements("//diffgram/KeyRate/KR")
	if len(krElements) == 0 {
		return decimal.Zero, fmt.Errorf("no rate data found in feed")
	}

	rateElement := krElements[0].FindElement("./Rate")
	if rateElement == nil {
		return decimal.Zero, fmt.Errorf("rate element not found in feed")
	}

	rate, err := decimal.NewFromString(rateElement.Text())
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse rate %q: %w", rateElement.Text(), err)
	}
	return rate, nil
}
