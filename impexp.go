package taxlot

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
	"github.com/taxlot/taxlot/date"
)

// this file contains the import/export formats. Rate tables and broker
// reports come in as CSV (or a JSON rate archive), computed results go
// back out as CSV.

// TimeLayout is the broker report timestamp format.
const TimeLayout = "2006-01-02 15:04:05"

// ReadRateTable parses one calendar year of quotations in the rate-table
// CSV format: a header row naming the currency columns, a "units" row
// giving each column's units-per-quote, then dated rows. An empty cell
// means the currency was not quoted that day.
//
//	date,USD,JPY
//	units,1,100
//	2023-01-02,4.3947,3.2560
func ReadRateTable(year int, r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("cannot parse rate table for %d: %w", year, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("rate table for %d has no units row", year)
	}

	currencies := records[0][1:]
	unitsRow := records[1]
	if !strings.EqualFold(unitsRow[0], "units") {
		return nil, fmt.Errorf("rate table for %d: second row must be the units row, got %q", year, unitsRow[0])
	}
	if len(unitsRow) != len(records[0]) {
		return nil, fmt.Errorf("rate table for %d: units row has %d columns, want %d", year, len(unitsRow), len(records[0]))
	}
	units := make(map[string]decimal.Decimal, len(currencies))
	for i, cur := range currencies {
		u, err := decimal.NewFromString(unitsRow[i+1])
		if err != nil {
			return nil, fmt.Errorf("rate table for %d: invalid units for %s: %w", year, cur, err)
		}
		units[cur] = u
	}

	var rows []Row
	for _, rec := range records[2:] {
		day, err := date.Parse(rec[0])
		if err != nil {
			return nil, fmt.Errorf("rate table for %d: invalid row date %q: %w", year, rec[0], err)
		}
		row := Row{Date: day, Values: make(map[string]decimal.Decimal, len(currencies))}
		for i, cur := range currencies {
			if i+1 >= len(rec) || rec[i+1] == "" {
				continue
			}
			v, err := decimal.NewFromString(rec[i+1])
			if err != nil {
				return nil, fmt.Errorf("rate table for %d: invalid %s rate on %s: %w", year, cur, day, err)
			}
			row.Values[cur] = v
		}
		rows = append(rows, row)
	}
	return NewTable(year, units, rows), nil
}

// ReadRateArchive parses a central-bank JSON rate archive: an array of
// dated entries, each quoting several currencies.
//
//	[{"effectiveDate":"2023-01-02",
//	  "rates":[{"code":"USD","mid":4.3947,"units":1}]}]
func ReadRateArchive(year int, r io.Reader) (*Table, error) {
	var jobj any
	if err := json.NewDecoder(r).Decode(&jobj); err != nil {
		return nil, fmt.Errorf("cannot parse rate archive for %d: %w", year, err)
	}
	jentries, err := jsonpath.Get("$[*]", jobj)
	if err != nil {
		return nil, fmt.Errorf("rate archive for %d is not an array: %w", year, err)
	}
	entries, ok := jentries.([]any)
	if !ok {
		return nil, fmt.Errorf("rate archive for %d is not an array", year)
	}

	units := make(map[string]decimal.Decimal)
	var rows []Row
	for _, entry := range entries {
		jday, err := jsonpath.Get("$.effectiveDate", entry)
		if err != nil {
			return nil, fmt.Errorf("rate archive for %d: entry without effectiveDate: %w", year, err)
		}
		s, ok := jday.(string)
		if !ok {
			return nil, fmt.Errorf("rate archive for %d: effectiveDate is not a string: %v", year, jday)
		}
		day, err := date.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("rate archive for %d: invalid effectiveDate %q: %w", year, s, err)
		}

		jrates, err := jsonpath.Get("$.rates[*]", entry)
		if err != nil {
			return nil, fmt.Errorf("rate archive for %d: entry %s has no rates: %w", year, day, err)
		}
		jlist, ok := jrates.([]any)
		if !ok {
			// a single-quote entry comes back unwrapped
			jlist = []any{jrates}
		}
		row := Row{Date: day, Values: make(map[string]decimal.Decimal, len(jlist))}
		for _, jr := range jlist {
			code, mid, u, err := parseArchiveRate(jr)
			if err != nil {
				return nil, fmt.Errorf("rate archive for %d, entry %s: %w", year, day, err)
			}
			row.Values[code] = mid
			units[code] = u
		}
		rows = append(rows, row)
	}
	return NewTable(year, units, rows), nil
}

func parseArchiveRate(jr any) (code string, mid, units decimal.Decimal, err error) {
	jcode, err := jsonpath.Get("$.code", jr)
	if err != nil {
		return "", decimal.Zero, decimal.Zero, fmt.Errorf("rate without code: %w", err)
	}
	code, ok := jcode.(string)
	if !ok {
		return "", decimal.Zero, decimal.Zero, fmt.Errorf("rate code is not a string: %v", jcode)
	}
	jmid, err := jsonpath.Get("$.mid", jr)
	if err != nil {
		return "", decimal.Zero, decimal.Zero, fmt.Errorf("rate %s without mid: %w", code, err)
	}
	fmid, ok := jmid.(float64)
	if !ok {
		return "", decimal.Zero, decimal.Zero, fmt.Errorf("rate %s mid is not a number: %v", code, jmid)
	}
	units = decimal.NewFromInt(1)
	if junits, err := jsonpath.Get("$.units", jr); err == nil {
		funits, ok := junits.(float64)
		if !ok {
			return "", decimal.Zero, decimal.Zero, fmt.Errorf("rate %s units is not a number: %v", code, junits)
		}
		units = decimal.NewFromFloat(funits)
	}
	return code, decimal.NewFromFloat(fmid), units, nil
}

// FileSource is a TableSource backed by an explicit year-to-file map.
// Files ending in .json are read as rate archives, everything else as
// rate-table CSV. A year absent from the map is reported missing.
type FileSource map[int]string

func (s FileSource) LoadTable(year int) (*Table, error) {
	path, ok := s[year]
	if !ok {
		return nil, nil
	}
	return loadTableFile(year, path)
}

// DirSource is a TableSource reading rates_<year>.csv from one directory.
type DirSource string

func (s DirSource) LoadTable(year int) (*Table, error) {
	path := filepath.Join(string(s), fmt.Sprintf("rates_%d.csv", year))
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return loadTableFile(year, path)
}

func loadTableFile(year int, path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open rate table for %d: %w", year, err)
	}
	defer f.Close()
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ReadRateArchive(year, f)
	}
	return ReadRateTable(year, f)
}

// report column order of the broker's transaction export.
var transactionColumns = []string{
	"type", "side", "time", "symbol_id", "isin", "price", "currency",
	"quantity", "fee", "fee_currency", "reported_pl", "order_id", "order_state",
}

// ReadTransactions parses a broker transaction report. Only STOCK rows
// are kept; the reported P/L shares the price currency.
func ReadTransactions(r io.Reader) ([]Transaction, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, &MalformedTransactionError{Reason: err.Error()}
	}
	if len(records) == 0 {
		return nil, &MalformedTransactionError{Reason: "transaction report has no header"}
	}
	if err := checkHeader(records[0], transactionColumns); err != nil {
		return nil, err
	}

	var txs []Transaction
	for n, rec := range records[1:] {
		if rec[0] != "STOCK" {
			continue
		}
		tx, err := parseTransaction(rec)
		if err != nil {
			return nil, fmt.Errorf("transaction report row %d: %w", n+2, err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

func checkHeader(header, want []string) error {
	if len(header) != len(want) {
		return &MalformedTransactionError{Reason: fmt.Sprintf("header has %d columns, want %d", len(header), len(want))}
	}
	for i, col := range want {
		if !strings.EqualFold(strings.TrimSpace(header[i]), col) {
			return &MalformedTransactionError{Reason: fmt.Sprintf("header column %d is %q, want %q", i+1, header[i], col)}
		}
	}
	return nil
}

func parseTransaction(rec []string) (Transaction, error) {
	side, err := ParseSide(rec[1])
	if err != nil {
		return Transaction{}, err
	}
	ts, err := time.Parse(TimeLayout, rec[2])
	if err != nil {
		return Transaction{}, &MalformedTransactionError{Reason: fmt.Sprintf("invalid timestamp %q", rec[2])}
	}
	price, err := ParseMoney(rec[5], rec[6])
	if err != nil {
		return Transaction{}, &MalformedTransactionError{Reason: fmt.Sprintf("invalid price %q", rec[5])}
	}
	quantity, err := ParseQuantity(rec[7])
	if err != nil {
		return Transaction{}, &MalformedTransactionError{Reason: fmt.Sprintf("invalid quantity %q", rec[7])}
	}
	fee, err := ParseMoney(rec[8], rec[9])
	if err != nil {
		return Transaction{}, &MalformedTransactionError{Reason: fmt.Sprintf("invalid fee %q", rec[8])}
	}
	reported := Zero(price.Currency())
	if rec[10] != "" {
		if reported, err = ParseMoney(rec[10], price.Currency()); err != nil {
			return Transaction{}, &MalformedTransactionError{Reason: fmt.Sprintf("invalid reported P/L %q", rec[10])}
		}
	}
	orderState, err := strconv.Atoi(rec[12])
	if err != nil {
		return Transaction{}, &MalformedTransactionError{Reason: fmt.Sprintf("invalid order state %q", rec[12])}
	}
	return Transaction{
		Side:       side,
		Time:       ts,
		SymbolID:   rec[3],
		ISIN:       rec[4],
		Price:      price,
		Quantity:   quantity,
		Fee:        fee,
		ReportedPL: reported,
		OrderID:    rec[11],
		OrderState: orderState,
	}, nil
}

var dividendColumns = []string{"transaction_id", "pay_date", "amount", "currency", "description"}

// rollbackPrefix starts the description of a dividend cancellation; the
// cancelled transaction id follows.
const rollbackPrefix = "Rollback for transaction "

// ReadDividends parses a broker dividend report. The source withholding
// percent is buried in the free-text description as "tax ... (-NN.NNN%)";
// a dividend row it cannot be extracted from is fatal.
func ReadDividends(r io.Reader) ([]DividendEvent, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, &MalformedTransactionError{Reason: err.Error()}
	}
	if len(records) == 0 {
		return nil, &MalformedTransactionError{Reason: "dividend report has no header"}
	}
	if err := checkHeader(records[0], dividendColumns); err != nil {
		return nil, err
	}

	var events []DividendEvent
	for n, rec := range records[1:] {
		e, err := parseDividend(rec)
		if err != nil {
			return nil, fmt.Errorf("dividend report row %d: %w", n+2, err)
		}
		events = append(events, e)
	}
	return events, nil
}

func parseDividend(rec []string) (DividendEvent, error) {
	day, err := date.Parse(rec[1])
	if err != nil {
		return DividendEvent{}, &MalformedTransactionError{Reason: fmt.Sprintf("invalid pay date %q", rec[1])}
	}
	gross, err := ParseMoney(rec[2], rec[3])
	if err != nil {
		return DividendEvent{}, &MalformedTransactionError{Reason: fmt.Sprintf("invalid amount %q", rec[2])}
	}
	e := DividendEvent{TransactionID: rec[0], PayDate: day, Gross: gross}

	desc := rec[4]
	if parent, ok := strings.CutPrefix(desc, rollbackPrefix); ok {
		fields := strings.Fields(parent)
		if len(fields) == 0 {
			return DividendEvent{}, &MalformedTransactionError{Reason: "rollback without a parent transaction id"}
		}
		e.RollbackOf = fields[0]
		return e, nil
	}
	if e.SourceTaxPercent, err = extractTaxPercent(desc); err != nil {
		return DividendEvent{}, err
	}
	return e, nil
}

// extractTaxPercent pulls the withholding rate out of a dividend
// description, e.g. "dividend VALE.NYSE tax 0.75 USD (-15.0%)" yields 15.0.
func extractTaxPercent(desc string) (Percent, error) {
	i := strings.Index(desc, "(-")
	if i < 0 {
		return Percent{}, &MalformedTransactionError{Reason: fmt.Sprintf("no tax percent in dividend description %q", desc)}
	}
	rest := desc[i+len("(-"):]
	j := strings.Index(rest, "%)")
	if j < 0 {
		return Percent{}, &MalformedTransactionError{Reason: fmt.Sprintf("unterminated tax percent in dividend description %q", desc)}
	}
	p, err := ParsePercent(rest[:j])
	if err != nil {
		return Percent{}, &MalformedTransactionError{Reason: fmt.Sprintf("invalid tax percent %q: %v", rest[:j], err)}
	}
	return p, nil
}

// WriteTransactionResults exports the computed per-row columns as CSV.
// Figures a row did not produce stay empty.
func WriteTransactionResults(w io.Writer, results []TransactionResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"order_id", "order_state", "isin", "computed_pl", "computed_pl_home", "reported_pl_home"}); err != nil {
		return fmt.Errorf("cannot write results header: %w", err)
	}
	for _, r := range results {
		rec := []string{
			r.OrderID,
			strconv.Itoa(r.OrderState),
			r.ISIN,
			moneyCell(r.ComputedPL),
			moneyCell(r.ComputedPLHome),
			moneyCell(r.ReportedPLHome),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("cannot write result for order %s: %w", r.OrderID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func moneyCell(m *Money) string {
	if m == nil {
		return ""
	}
	return m.Amount().String()
}

// DatedMoney is one row of a money-list file: an amount on a day.
type DatedMoney struct {
	Date  date.Date
	Money Money
}

// ReadMoneyList parses a (date, currency, amount) CSV with no header.
func ReadMoneyList(r io.Reader) ([]DatedMoney, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("cannot parse money list: %w", err)
	}
	var list []DatedMoney
	for n, rec := range records {
		if len(rec) != 3 {
			return nil, fmt.Errorf("money list row %d: want 3 columns, got %d", n+1, len(rec))
		}
		day, err := date.Parse(rec[0])
		if err != nil {
			return nil, fmt.Errorf("money list row %d: invalid date %q: %w", n+1, rec[0], err)
		}
		m, err := ParseMoney(rec[2], rec[1])
		if err != nil {
			return nil, fmt.Errorf("money list row %d: %w", n+1, err)
		}
		list = append(list, DatedMoney{Date: day, Money: m})
	}
	return list, nil
}

// ConvertMoneyList converts every row to the repository's home currency
// at the rate valid on the row's own date.
func ConvertMoneyList(rates *Repository, list []DatedMoney) ([]DatedMoney, error) {
	out := make([]DatedMoney, 0, len(list))
	for _, dm := range list {
		home, err := rates.ConvertToHome(dm.Date, dm.Money)
		if err != nil {
			return nil, fmt.Errorf("cannot convert %s on %s: %w", dm.Money, dm.Date, err)
		}
		out = append(out, DatedMoney{Date: dm.Date, Money: home})
	}
	return out, nil
}
