// Package iso downloads the ISO 4217 currency catalog published by SIX.
package iso

import (
	"context"
	"encoding/xml"
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"fxpub/internal/fxpb"
	"fxpub/internal/retry"
)

const (
	currentListURL  = "https://www.six-group.com/dam/download/financial-information/data-center/iso-currrency/lists/list-one.xml"
	historicListURL = "https://www.six-group.com/dam/download/financial-information/data-center/iso-currrency/lists/list-three.xml"

	// withdrawalDateLayout covers the common "YYYY-MM" form. The source list
	// also carries free-form ranges ("1993-12 to 1994-12"), which fail to
	// parse and are skipped.
	withdrawalDateLayout = "2006-01"
)

// ErrCatalogConflict reports contradictory duplicate entries for one
// currency code in the source list.
var ErrCatalogConflict = errors.New("currency catalog conflict")

type Client struct {
	httpClient *http.Client
	retrier    retry.Retrier
	log        *logrus.Entry

	currentListURL  string
	historicListURL string
}

// currencyEntry is one CcyNtry/HstrcCcyNtry element. Current entries carry
// CcyMnrUnts, historic ones WthdrwlDt.
type currencyEntry struct {
	CountryName    string `xml:"CtryNm"`
	CurrencyName   string `xml:"CcyNm"`
	Code           string `xml:"Ccy"`
	NumericCode    string `xml:"CcyNbr"`
	MinorUnits     string `xml:"CcyMnrUnts"`
	WithdrawalDate string `xml:"WthdrwlDt"`
}

type currentList struct {
	Entries []currencyEntry `xml:"CcyTbl>CcyNtry"`
}

type historicList struct {
	Entries []currencyEntry `xml:"HstrcCcyTbl>HstrcCcyNtry"`
}

// Refresh downloads the current and historic ISO 4217 lists and merges them
// into one catalog, preserving source order. A currency used by several
// countries becomes one entry listing all of them; entries that contradict
// each other fail with ErrCatalogConflict.
func (c *Client) Refresh(ctx context.Context) ([]*fxpb.Currency, error) {
	c.log.Debug("downloading currencies...")

	var current currentList
	if err := c.fetchXML(ctx, c.currentListURL, &current); err != nil {
		return nil, err
	}
	if len(current.Entries) == 0 {
		return nil, errors.New("no entries in current currency list")
	}

	catalog := make(map[string]*fxpb.Currency)
	var codes []string

	for _, entry := range current.Entries {
		// Entries like "No universal currency" territories have no code.
		if entry.Code == "" {
			continue
		}

		// "N.A." and similar count as zero minor units.
		minorUnits, err := strconv.Atoi(entry.MinorUnits)
		if err != nil {
			minorUnits = 0
		}

		existing, ok := catalog[entry.Code]
		if !ok {
			c.log.Debugf("registered currency: %s", entry.Code)
			catalog[entry.Code] = &fxpb.Currency{
				AlphabeticCode: entry.Code,
				NumericCode:    entry.NumericCode,
				Name:           entry.CurrencyName,
				MinorUnits:     int32(minorUnits),
				Countries:      []string{entry.CountryName},
			}
			codes = append(codes, entry.Code)
			continue
		}

		existing.Countries = append(existing.Countries, entry.CountryName)
		if existing.NumericCode != entry.NumericCode {
			return nil, errors.Wrapf(ErrCatalogConflict, "numeric code mismatch for %s", entry.Code)
		}
		if existing.Name != entry.CurrencyName {
			return nil, errors.Wrapf(ErrCatalogConflict, "name mismatch for %s", entry.Code)
		}
		if existing.MinorUnits != int32(minorUnits) {
			return nil, errors.Wrapf(ErrCatalogConflict, "minor units mismatch for %s", entry.Code)
		}
	}

	var historic historicList
	if err := c.fetchXML(ctx, c.historicListURL, &historic); err != nil {
		return nil, err
	}

	for _, entry := range historic.Entries {
		if entry.Code == "" {
			continue
		}

		if existing, ok := catalog[entry.Code]; ok {
			existing.Countries = append(existing.Countries, entry.CountryName)
			continue
		}

		withdrawal, err := time.Parse(withdrawalDateLayout, entry.WithdrawalDate)
		if err != nil {
			c.log.Warnf("invalid WthdrwlDt: %v", err)
			continue
		}

		c.log.Debugf("registered historical currency: %s", entry.Code)
		catalog[entry.Code] = &fxpb.Currency{
			AlphabeticCode: entry.Code,
			NumericCode:    entry.NumericCode,
			Name:           entry.CurrencyName,
			WithdrawalDate: &fxpb.Date{
				Year:  int32(withdrawal.Year()),
				Month: int32(withdrawal.Month()),
			},
		}
		codes = append(codes, entry.Code)
	}

	currencies := make([]*fxpb.Currency, 0, len(codes))
	for _, code := range codes {
		currencies = append(currencies, catalog[code])
	}
	return currencies, nil
}

func (c *Client) fetchXML(ctx context.Context, url string, out any) error {
	c.log.Debugf("GET %s", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}

	var httpResp *http.Response
	_, err = c.retrier.Retry(
		func() error {
			httpResp, err = c.httpClient.Do(req)
			return err
		},
	)
	if err != nil {
		return errors.Wrap(err, "failed to make request")
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return errors.Errorf("received non-200 status code: %d", httpResp.StatusCode)
	}

	if err := xml.NewDecoder(httpResp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "failed to decode currency list")
	}
	return nil
}

func NewClient(httpClient *http.Client, retrier retry.Retrier) *Client {
	return &Client{
		httpClient:      httpClient,
		retrier:         retrier,
		log:             logrus.WithField("client", "iso"),
		currentListURL:  currentListURL,
		historicListURL: historicListURL,
	}
}
