package seed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/manas-yu/user-transaction-visualizer/internal/domain"
	"github.com/manas-yu/user-transaction-visualizer/internal/service"
)

// Config drives the synthetic data generator. The share chances control how
// often a new entity reuses a value already handed out, which is what makes
// the inferred link graph interesting.
type Config struct {
	NumUsers              int
	NumTransactions       int
	SharedAttributeChance float64
	IPShareChance         float64
	DeviceShareChance     float64
	LocationShareChance   float64
	Seed                  int64
}

// DefaultConfig returns baseline settings producing a well-connected graph.
func DefaultConfig() Config {
	return Config{
		NumUsers:              200,
		NumTransactions:       1000,
		SharedAttributeChance: 0.35,
		IPShareChance:         0.25,
		DeviceShareChance:     0.3,
		LocationShareChance:   0.2,
		Seed:                  42,
	}
}

// Dataset contains the generated users and transactions.
type Dataset struct {
	Users        []service.UserInput
	Transactions []service.TransactionInput
}

// Generator produces synthetic users and transactions with deliberately
// overlapping attributes and metadata.
type Generator struct {
	cfg       Config
	rand      *rand.Rand
	fragments nameFragments
	pools     attributePools
}

// New returns a configured Generator instance.
func New(cfg Config) *Generator {
	defaults := DefaultConfig()
	if cfg.NumUsers <= 0 {
		cfg.NumUsers = defaults.NumUsers
	}
	if cfg.NumTransactions <= 0 {
		cfg.NumTransactions = defaults.NumTransactions
	}
	if cfg.SharedAttributeChance <= 0 {
		cfg.SharedAttributeChance = defaults.SharedAttributeChance
	}
	if cfg.IPShareChance <= 0 {
		cfg.IPShareChance = defaults.IPShareChance
	}
	if cfg.DeviceShareChance <= 0 {
		cfg.DeviceShareChance = defaults.DeviceShareChance
	}
	if cfg.LocationShareChance <= 0 {
		cfg.LocationShareChance = defaults.LocationShareChance
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	return &Generator{
		cfg:       cfg,
		rand:      rand.New(rand.NewSource(cfg.Seed)),
		fragments: defaultNameFragments(),
	}
}

// Generate synthesises users and transactions. It respects context cancellation.
func (g *Generator) Generate(ctx context.Context) (Dataset, error) {
	users := make([]service.UserInput, g.cfg.NumUsers)

	for i := 0; i < g.cfg.NumUsers; i++ {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}

		userID := fmt.Sprintf("USR-%06d", i+1)
		email := g.maybeSharedString(&g.pools.emails, g.cfg.SharedAttributeChance, g.randomEmail)
		phone := g.maybeSharedString(&g.pools.phones, g.cfg.SharedAttributeChance, g.randomPhone)

		users[i] = service.UserInput{
			ID:             userID,
			Name:           g.randomFullName(),
			Email:          email,
			Phone:          phone,
			Address:        g.maybeSharedAddress(),
			PaymentMethods: g.maybePaymentMethods(),
		}
	}

	transactions := make([]service.TransactionInput, g.cfg.NumTransactions)
	now := time.Now().UTC()

	for i := 0; i < g.cfg.NumTransactions; i++ {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}

		txID := fmt.Sprintf("TX-%07d", i+1)
		senderIdx := g.rand.Intn(len(users))
		receiverIdx := g.rand.Intn(len(users))
		if senderIdx == receiverIdx {
			receiverIdx = (receiverIdx + 1) % len(users)
		}

		amount := g.rand.Float64()*4900 + 100
		timestamp := now.Add(-time.Duration(g.rand.Intn(90*24)) * time.Minute)

		transactions[i] = service.TransactionInput{
			ID:          txID,
			FromUserID:  users[senderIdx].ID,
			ToUserID:    users[receiverIdx].ID,
			Amount:      amount,
			Currency:    g.randomCurrency(),
			Status:      g.randomStatus(),
			Timestamp:   &timestamp,
			IPAddress:   g.maybeSharedString(&g.pools.ips, g.cfg.IPShareChance, g.randomIP),
			DeviceID:    g.maybeSharedString(&g.pools.devices, g.cfg.DeviceShareChance, g.randomDeviceID),
			Location:    g.maybeSharedLocation(),
			Description: g.randomNote(),
		}
	}

	return Dataset{Users: users, Transactions: transactions}, nil
}

type attributePools struct {
	emails    []string
	phones    []string
	addresses []domain.Address
	payments  []domain.PaymentMethod
	ips       []string
	devices   []string
	locations []domain.Location
}

func (g *Generator) maybeSharedString(pool *[]string, chance float64, newValue func() string) string {
	if len(*pool) > 0 && g.rand.Float64() < chance {
		return (*pool)[g.rand.Intn(len(*pool))]
	}
	val := newValue()
	*pool = append(*pool, val)
	return val
}

func (g *Generator) maybeSharedAddress() *domain.Address {
	if len(g.pools.addresses) > 0 && g.rand.Float64() < g.cfg.SharedAttributeChance {
		addr := g.pools.addresses[g.rand.Intn(len(g.pools.addresses))]
		return &addr
	}
	addr := domain.Address{
		Street:  g.randomStreet(),
		City:    g.randomCity(),
		Country: "US",
	}
	g.pools.addresses = append(g.pools.addresses, addr)
	return &addr
}

func (g *Generator) maybePaymentMethods() []domain.PaymentMethod {
	count := 1 + g.rand.Intn(2)
	methods := make([]domain.PaymentMethod, 0, count)
	for i := 0; i < count; i++ {
		if len(g.pools.payments) > 0 && g.rand.Float64() < g.cfg.SharedAttributeChance {
			methods = append(methods, g.pools.payments[g.rand.Intn(len(g.pools.payments))])
			continue
		}
		pm := domain.PaymentMethod{
			Type:     g.randomMethodType(),
			Last4:    fmt.Sprintf("%04d", g.rand.Intn(10000)),
			Provider: g.randomProvider(),
		}
		if g.rand.Float64() < 0.5 {
			g.pools.payments = append(g.pools.payments, pm)
		}
		methods = append(methods, pm)
	}
	return methods
}

func (g *Generator) maybeSharedLocation() *domain.Location {
	if len(g.pools.locations) > 0 && g.rand.Float64() < g.cfg.LocationShareChance {
		loc := g.pools.locations[g.rand.Intn(len(g.pools.locations))]
		return &loc
	}
	loc := domain.Location{
		City:    g.randomCity(),
		Country: "US",
		Lat:     float64(g.rand.Intn(180000)-90000) / 1000,
		Lng:     float64(g.rand.Intn(360000)-180000) / 1000,
	}
	g.pools.locations = append(g.pools.locations, loc)
	return &loc
}

func (g *Generator) randomFullName() string {
	return fmt.Sprintf("%s %s",
		g.fragments.first[g.rand.Intn(len(g.fragments.first))],
		g.fragments.last[g.rand.Intn(len(g.fragments.last))])
}

func (g *Generator) randomEmail() string {
	return fmt.Sprintf("%s.%s%d@%s",
		g.fragments.first[g.rand.Intn(len(g.fragments.first))],
		g.fragments.last[g.rand.Intn(len(g.fragments.last))],
		g.rand.Intn(1000),
		g.fragments.domains[g.rand.Intn(len(g.fragments.domains))])
}

func (g *Generator) randomPhone() string {
	return fmt.Sprintf("+1%03d%03d%04d", g.rand.Intn(900)+100, g.rand.Intn(900)+100, g.rand.Intn(10000))
}

func (g *Generator) randomStreet() string {
	return fmt.Sprintf("%d %s %s", g.rand.Intn(9999)+1,
		g.fragments.streetNames[g.rand.Intn(len(g.fragments.streetNames))],
		g.fragments.streetSuffix[g.rand.Intn(len(g.fragments.streetSuffix))])
}

func (g *Generator) randomCity() string {
	return g.fragments.cities[g.rand.Intn(len(g.fragments.cities))]
}

func (g *Generator) randomMethodType() string {
	types := []string{"card", "bank_account", "wallet"}
	return types[g.rand.Intn(len(types))]
}

func (g *Generator) randomProvider() string {
	providers := []string{"visa", "mastercard", "amex", "discover", "paypal", "stripe"}
	return providers[g.rand.Intn(len(providers))]
}

func (g *Generator) randomIP() string {
	return fmt.Sprintf("%d.%d.%d.%d", g.rand.Intn(223)+1, g.rand.Intn(256), g.rand.Intn(256), g.rand.Intn(256))
}

func (g *Generator) randomDeviceID() string {
	return fmt.Sprintf("device-%06d", g.rand.Intn(999999))
}

func (g *Generator) randomCurrency() string {
	currencies := []string{"USD", "USD", "USD", "EUR", "GBP", "INR"}
	return currencies[g.rand.Intn(len(currencies))]
}

func (g *Generator) randomStatus() string {
	statuses := []string{"completed", "completed", "completed", "pending", "failed"}
	return statuses[g.rand.Intn(len(statuses))]
}

func (g *Generator) randomNote() string {
	notes := []string{"Invoice settlement", "Freelance payout", "Peer transfer", "Market purchase", "Rent split", "Gift"}
	return notes[g.rand.Intn(len(notes))]
}

type nameFragments struct {
	first        []string
	last         []string
	domains      []string
	streetNames  []string
	streetSuffix []string
	cities       []string
}

func defaultNameFragments() nameFragments {
	return nameFragments{
		first:        []string{"Jane", "John", "Alex", "Priya", "Liu", "Maria", "Omar", "Sofia", "Noah", "Emma", "Lucas", "Mia", "Ava", "Ethan", "Zara"},
		last:         []string{"Doe", "Smith", "Chen", "Patel", "Garcia", "Khan", "Kim", "Ivanov", "Nguyen", "Silva", "Brown", "Lee"},
		domains:      []string{"example.com", "mail.com", "payments.net", "securepay.org"},
		streetNames:  []string{"Market", "Mission", "Broadway", "Fifth", "Sunset", "Park", "Cedar", "Oak", "Pine", "Ash"},
		streetSuffix: []string{"St", "Ave", "Blvd", "Ln", "Rd", "Way"},
		cities:       []string{"San Francisco", "New York", "Seattle", "Austin", "Chicago", "Miami", "Denver", "Boston", "Los Angeles"},
	}
}
