package payroll

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Premium is one named wage premium inside a pay period.
type Premium struct {
	Rate     decimal.Decimal `json:"rate"`
	Hours    decimal.Decimal `json:"hours"`
	TotalPay decimal.Decimal `json:"totalPay"`
}

// PremiumBreakdown maps premium name to its figures, preserving insertion
// order for report rendering.
type PremiumBreakdown struct {
	names   []string
	entries map[string]Premium
}

// Set stores the premium under name, inserting the name on first use.
func (pb *PremiumBreakdown) Set(name string, p Premium) {
	if pb.entries == nil {
		pb.entries = make(map[string]Premium)
	}
	if _, ok := pb.entries[name]; !ok {
		pb.names = append(pb.names, name)
	}
	pb.entries[name] = p
}

// Get returns the premium stored under name.
func (pb PremiumBreakdown) Get(name string) (Premium, bool) {
	p, ok := pb.entries[name]
	return p, ok
}

// Names returns premium names in insertion order.
func (pb PremiumBreakdown) Names() []string {
	out := make([]string, len(pb.names))
	copy(out, pb.names)
	return out
}

// Len reports the number of premiums.
func (pb PremiumBreakdown) Len() int { return len(pb.names) }

// TotalPay sums every premium's total pay.
func (pb PremiumBreakdown) TotalPay() decimal.Decimal {
	total := decimal.Zero
	for _, name := range pb.names {
		total = total.Add(pb.entries[name].TotalPay)
	}
	return total
}

// MarshalJSON renders the breakdown as a JSON object in insertion order.
func (pb PremiumBreakdown) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range pb.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		value, err := json.Marshal(pb.entries[name])
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON restores the breakdown, keeping the object's key order.
func (pb *PremiumBreakdown) UnmarshalJSON(data []byte) error {
	*pb = PremiumBreakdown{}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return &json.UnmarshalTypeError{Value: "non-object", Type: nil}
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		name, _ := keyTok.(string)
		var p Premium
		if err := dec.Decode(&p); err != nil {
			return err
		}
		pb.Set(name, p)
	}
	return nil
}

// ParsePremiums decodes the semi-structured stored form of a period's
// premiums. Historical rows hold either a JSON object or that object
// serialised once more as a JSON string; anything malformed or empty
// contributes an empty breakdown rather than an error, so one bad row never
// sinks a whole aggregation.
func ParsePremiums(raw []byte) PremiumBreakdown {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return PremiumBreakdown{}
	}
	if trimmed[0] == '"' {
		var unwrapped string
		if err := json.Unmarshal(trimmed, &unwrapped); err != nil {
			return PremiumBreakdown{}
		}
		trimmed = bytes.TrimSpace([]byte(unwrapped))
		if len(trimmed) == 0 {
			return PremiumBreakdown{}
		}
	}
	var pb PremiumBreakdown
	if err := json.Unmarshal(trimmed, &pb); err != nil {
		return PremiumBreakdown{}
	}
	return pb
}

// PayPeriodRecord is one immutable historical payroll fact, produced by an
// external payroll run and never mutated here.
type PayPeriodRecord struct {
	PayDate       time.Time        `json:"payDate"`
	PeriodStart   time.Time        `json:"periodStart"`
	PeriodEnd     time.Time        `json:"periodEnd"`
	GrossPay      decimal.Decimal  `json:"grossPay"`
	VacationPay   decimal.Decimal  `json:"vacationPay"`
	RegularHours  decimal.Decimal  `json:"regularHours"`
	OvertimeHours decimal.Decimal  `json:"overtimeHours"`
	LieuHours     decimal.Decimal  `json:"lieuHours"`
	Premiums      PremiumBreakdown `json:"premiums"`
	FederalTax    decimal.Decimal  `json:"federalTax"`
	ProvincialTax decimal.Decimal  `json:"provincialTax"`
	CPPDeduction  decimal.Decimal  `json:"cppDeduction"`
	EIDeduction   decimal.Decimal  `json:"eiDeduction"`
}

// WorkedHours sums regular, overtime and lieu hours.
func (p PayPeriodRecord) WorkedHours() decimal.Decimal {
	return p.RegularHours.Add(p.OvertimeHours).Add(p.LieuHours)
}

// PremiumPay sums the period's premium totals.
func (p PayPeriodRecord) PremiumPay() decimal.Decimal {
	return p.Premiums.TotalPay()
}

// Earnings is the period's uncapped insurable base: gross plus vacation pay
// plus premium pay.
func (p PayPeriodRecord) Earnings() decimal.Decimal {
	return p.GrossPay.Add(p.VacationPay).Add(p.PremiumPay())
}

// Limits carries the jurisdiction/tax-year earnings caps. These change
// yearly and per jurisdiction, so they are injected from configuration
// rather than compiled in.
type Limits struct {
	WeeklyInsurableMax      decimal.Decimal
	AnnualEIInsurableMax    decimal.Decimal
	AnnualCPPPensionableMax decimal.Decimal
}
