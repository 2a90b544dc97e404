package chat

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/MuratKus/burbarshop/internal/application/analytics"
	"github.com/MuratKus/burbarshop/internal/domain/order"
)

// Trigger vocabularies. Each rule owns its words so a canonical phrase
// matches exactly one rule. The sales words are the generic analytics
// vocabulary, so the sales rule yields to order listings, product
// performance and customer stats. Any other overlap is decided by the rule
// order below.
var (
	listingVerbRe  = regexp.MustCompile(`\b(show|list|get|view|display|find)\b`)
	ordersWordRe   = regexp.MustCompile(`\borders\b`)
	ordersPhraseRe = regexp.MustCompile(`\b(all|recent|latest) orders\b`)
	statusWordRe   = regexp.MustCompile(`\b(pending|processing|shipped|delivered|cancelled|canceled)\b`)

	updateOrderRe = regexp.MustCompile(`(?i)\bupdate\s+order\s+#?([a-z0-9]+)\s+to\s+([a-z]+)\b`)
	shipOrderRe   = regexp.MustCompile(`(?i)\bship\s+order\s+#?([a-z0-9]+)\s+with\s+tracking(?:\s+(?:number|no\.?|#))?\s+(\S.*)$`)

	inventoryRe   = regexp.MustCompile(`\b(inventory|stock|restock)\b`)
	salesRe       = regexp.MustCompile(`\b(sales|revenue|analytics|earnings)\b`)
	lastDaysRe    = regexp.MustCompile(`\blast\s+(\d{1,4})\s+days?\b`)
	performanceRe = regexp.MustCompile(`\b(best[ -]?sell\w*|top products?|top selling|product performance|popular)\b`)
	customerRe    = regexp.MustCompile(`\bcustomers?\b`)
	customerStats = regexp.MustCompile(`\b(stats|statistics|count|how many|summary|overview|insights|metrics|numbers)\b`)
	paymentRe     = regexp.MustCompile(`(?i:\bpayment)\s+(pi_[A-Za-z0-9]+)\b`)
)

// trackingKeywords are the optional words between "tracking" and the number.
// Alone they are not a tracking number.
var trackingKeywords = map[string]struct{}{
	"number": {}, "no": {}, "no.": {}, "#": {},
}

// message is a chat message in the two forms the rules look at
type message struct {
	raw   string // trimmed, original case
	lower string // trimmed, lower-cased
}

type rule struct {
	kind  Kind
	build func(m message) (Command, bool)
}

// Parser maps free text to a Command with an ordered list of rules. The
// first rule that matches wins and no match gives an unknown command.
type Parser struct {
	rules []rule
}

// NewParser creates a Parser with the admin chat rules
func NewParser() *Parser {
	return &Parser{rules: []rule{
		{KindGetOrders, parseGetOrders},
		{KindUpdateOrder, parseUpdateOrder},
		{KindShipOrder, parseShipOrder},
		{KindCheckInventory, parseCheckInventory},
		{KindSalesAnalytics, parseSalesAnalytics},
		{KindProductPerformance, parseProductPerformance},
		{KindCustomerStats, parseCustomerStats},
		{KindLookupPayment, parseLookupPayment},
	}}
}

// Parse returns the command of the first matching rule
func (p *Parser) Parse(text string) Command {
	m := newMessage(text)
	for _, r := range p.rules {
		if cmd, ok := r.build(m); ok {
			return cmd
		}
	}
	return Unknown()
}

// Matches returns every rule kind that accepts text, in rule order
func (p *Parser) Matches(text string) []Kind {
	m := newMessage(text)
	var kinds []Kind
	for _, r := range p.rules {
		if _, ok := r.build(m); ok {
			kinds = append(kinds, r.kind)
		}
	}
	return kinds
}

func newMessage(text string) message {
	raw := strings.Join(strings.Fields(text), " ")
	return message{raw: raw, lower: strings.ToLower(raw)}
}

func isOrderListing(m message) bool {
	if listingVerbRe.MatchString(m.lower) && ordersWordRe.MatchString(m.lower) {
		return true
	}
	return ordersPhraseRe.MatchString(m.lower)
}

func parseGetOrders(m message) (Command, bool) {
	if !isOrderListing(m) {
		return Command{}, false
	}
	if strings.Contains(m.lower, "all orders") {
		return GetOrders(nil), true
	}
	if word := statusWordRe.FindString(m.lower); word != "" {
		if status, ok := order.ParseOrderStatus(word); ok {
			return GetOrders(&status), true
		}
	}
	return GetOrders(nil), true
}

func parseUpdateOrder(m message) (Command, bool) {
	match := updateOrderRe.FindStringSubmatch(m.raw)
	if match == nil {
		return Command{}, false
	}
	status, ok := order.ParseOrderStatus(match[2])
	if !ok {
		return Command{}, false
	}
	return UpdateOrder(strings.ToUpper(match[1]), status), true
}

func parseShipOrder(m message) (Command, bool) {
	match := shipOrderRe.FindStringSubmatch(m.raw)
	if match == nil {
		return Command{}, false
	}
	tracking := strings.TrimSpace(match[2])
	if _, keyword := trackingKeywords[strings.ToLower(tracking)]; keyword || tracking == "" {
		return Command{}, false
	}
	return ShipOrder(strings.ToUpper(match[1]), tracking), true
}

func parseCheckInventory(m message) (Command, bool) {
	if !inventoryRe.MatchString(m.lower) {
		return Command{}, false
	}
	return CheckInventory(), true
}

func parseSalesAnalytics(m message) (Command, bool) {
	if !salesRe.MatchString(m.lower) {
		return Command{}, false
	}
	if isOrderListing(m) || performanceRe.MatchString(m.lower) || isCustomerStats(m) {
		return Command{}, false
	}
	days := analytics.DefaultWindowDays
	if match := lastDaysRe.FindStringSubmatch(m.lower); match != nil {
		if n, err := strconv.Atoi(match[1]); err == nil {
			days = n
		}
	}
	return SalesAnalytics(days), true
}

func parseProductPerformance(m message) (Command, bool) {
	if !performanceRe.MatchString(m.lower) {
		return Command{}, false
	}
	return ProductPerformance(), true
}

func isCustomerStats(m message) bool {
	return customerRe.MatchString(m.lower) && customerStats.MatchString(m.lower)
}

func parseCustomerStats(m message) (Command, bool) {
	if !isCustomerStats(m) {
		return Command{}, false
	}
	return CustomerStats(), true
}

func parseLookupPayment(m message) (Command, bool) {
	match := paymentRe.FindStringSubmatch(m.raw)
	if match == nil {
		return Command{}, false
	}
	return LookupPayment(match[1]), true
}
