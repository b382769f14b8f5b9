package cli_test

import (
	"bytes"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/nikolayk812/storefront/internal/cli"
	"github.com/nikolayk812/storefront/internal/commerce/fake"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/session"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var headphones = fake.DemoHeadphonesID.String()

type harness struct {
	t        *testing.T
	api      *fake.Server
	apiURL   string
	stateDir string
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	api := fake.NewDemo(nil)
	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	stateDir := t.TempDir()
	t.Setenv("STOREFRONT_STATE_DIR", stateDir)
	t.Setenv("STOREFRONT_CART_DSN", "")
	t.Setenv("STOREFRONT_LOG_LEVEL", "error")

	return &harness{
		t:        t,
		api:      api,
		apiURL:   srv.URL + fake.PathPrefix,
		stateDir: stateDir,
	}
}

func (h *harness) run(args ...string) (string, string, int) {
	h.t.Helper()

	var stdout, stderr bytes.Buffer
	code := cli.Run(h.t.Context(), append([]string{"-api", h.apiURL}, args...), &stdout, &stderr)

	return stdout.String(), stderr.String(), code
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()

	stdout, stderr, code := h.run(args...)
	require.Equal(h.t, 0, code, "storefront %s\nstderr: %s", strings.Join(args, " "), stderr)

	return stdout
}

func TestRun_Usage(t *testing.T) {
	h := newHarness(t)

	_, stderr, code := h.run()
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "commands:")

	_, stderr, code = h.run("fly")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, `unknown command "fly"`)

	_, stderr, code = h.run("qty", "1")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "usage: storefront qty <line> <n>")

	_, stderr, code = h.run("products", "-bogus")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "usage: storefront products")
}

func TestRun_RequiresStore(t *testing.T) {
	h := newHarness(t)

	_, stderr, code := h.run("cart")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "no store selected")
}

func TestRun_Connect(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("connect", session.QRPayload(fake.DemoStoreSlug))
	assert.Contains(t, out, "Connected to TechGadget (techgadget-12345)")

	store, err := session.NewStore(h.stateDir)
	require.NoError(t, err)
	state, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, fake.DemoStoreSlug, state.StoreSlug)
	assert.Equal(t, "USD", state.StoreCurrency)

	_, stderr, code := h.run("connect", "unknown-store")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "store not found")

	_, stderr, code = h.run("connect", "not a slug")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "is not valid")
}

func TestRun_NoStoreIsQuietAtDefaultLevel(t *testing.T) {
	h := newHarness(t)
	t.Setenv("STOREFRONT_LOG_LEVEL", "")

	out, stderr, code := h.run("connect", fake.DemoStoreSlug)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, out, "Connected to TechGadget")
	assert.Empty(t, stderr)
}

func TestRun_Browse(t *testing.T) {
	h := newHarness(t)
	h.mustRun("connect", fake.DemoStoreSlug)

	out := h.mustRun("categories")
	assert.Contains(t, out, "c-audio")
	assert.Contains(t, out, "Power")

	out = h.mustRun("products", "-query", "charger")
	assert.Contains(t, out, "USB-C Charger")
	assert.Contains(t, out, "29.99 USD (now 24.99 USD)")
	assert.NotContains(t, out, "Phone Case")

	out = h.mustRun("products", "-category", "c-cases")
	assert.Contains(t, out, "Phone Case")
	assert.Contains(t, out, "out of stock")

	out = h.mustRun("product", headphones)
	assert.Contains(t, out, "Wireless Headphones")
	assert.Contains(t, out, "v-size-l")
	assert.Contains(t, out, "+2.00")
	assert.Contains(t, out, "uploads/headphones.jpg")

	out = h.mustRun("countries")
	assert.Contains(t, out, "United Kingdom")

	_, stderr, code := h.run("product", "not-a-uuid")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "product id[not-a-uuid] is not valid")
}

// Adding P (base 10) in Large (+2) twice then once yields one line with quantity 3 and total 36.
func TestRun_CartFlow(t *testing.T) {
	h := newHarness(t)
	h.mustRun("connect", fake.DemoStoreSlug)

	out := h.mustRun("add", headphones, "-variant", "Size=v-size-l", "-qty", "2")
	assert.Contains(t, out, "Added 2 x Wireless Headphones (Size: Large) at 12.00 USD each")
	assert.Contains(t, out, "cart subtotal 24.00 USD")

	out = h.mustRun("add", headphones, "-variant", "Size=v-size-l")
	assert.Contains(t, out, "now has 3")
	assert.Contains(t, out, "cart subtotal 36.00 USD")

	out = h.mustRun("add", headphones, "-option", "o-case")
	assert.Contains(t, out, "(Size: Small, Extras: Travel case) at 14.50 USD each")

	out = h.mustRun("cart")
	assert.Contains(t, out, "items:    4")
	assert.Contains(t, out, "subtotal: 50.50 USD")

	out = h.mustRun("qty", "2", "3")
	assert.Contains(t, out, "subtotal: 79.50 USD")

	out = h.mustRun("qty", "2", "0")
	assert.Contains(t, out, "subtotal: 36.00 USD")
	assert.NotContains(t, out, "Travel case")

	out = h.mustRun("remove", "nothing-here")
	assert.Contains(t, out, "No line matches nothing-here")
	assert.Contains(t, out, "subtotal: 36.00 USD")

	out = h.mustRun("remove", "1")
	assert.Contains(t, out, "Your cart is empty")

	h.mustRun("add", headphones)
	out = h.mustRun("clear")
	assert.Contains(t, out, "Cart cleared")
	assert.Contains(t, h.mustRun("cart"), "Your cart is empty")

	_, stderr, code := h.run("add", fake.DemoCaseID.String())
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Phone Case is out of stock")

	_, stderr, code = h.run("add", headphones, "-variant", "Size=v-size-xxl")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "unknown variant")

	assert.FileExists(t, filepath.Join(h.stateDir, "cart.db"))
}

func TestRun_Account(t *testing.T) {
	h := newHarness(t)
	h.mustRun("connect", fake.DemoStoreSlug)

	email := gofakeit.Email()

	_, stderr, code := h.run("register", "-first", "Ada", "-last", "Lovelace", "-email", email,
		"-password", "secret1", "-confirm", "secret2")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "passwords do not match")

	out := h.mustRun("register", "-first", "Ada", "-last", "Lovelace", "-email", email,
		"-password", "secret1", "-confirm", "secret1")
	assert.Contains(t, out, "Welcome, Ada Lovelace")

	out = h.mustRun("profile")
	assert.Contains(t, out, email)

	out = h.mustRun("profile", "-phone", "+1 555 0100")
	assert.Contains(t, out, "+1 555 0100")

	h.mustRun("logout")

	_, stderr, code = h.run("profile")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "not signed in")

	_, stderr, code = h.run("login", "-email", email, "-password", "wrong!!")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "invalid email or password")

	out = h.mustRun("login", "-email", email, "-password", "secret1")
	assert.Contains(t, out, "Signed in as "+email)
}

func TestRun_Checkout(t *testing.T) {
	h := newHarness(t)
	h.mustRun("connect", fake.DemoStoreSlug)

	_, stderr, code := h.run("checkout")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "cart is empty")

	h.mustRun("add", headphones, "-variant", "Size=v-size-l", "-qty", "2")

	out := h.mustRun("checkout", "-shipping", "express")
	assert.Contains(t, out, "Express Shipping")
	assert.Contains(t, out, "1.92 USD")
	assert.Contains(t, out, "35.91 USD")
	assert.Contains(t, out, "run again with -place")

	address := []string{"-street", "1 Main St", "-city", "Springfield", "-postal", "12345", "-country", "US"}

	_, stderr, code = h.run(append([]string{"checkout", "-place"}, address...)...)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "customer is not signed in")

	h.mustRun("register", "-first", "Ada", "-last", "Lovelace", "-email", gofakeit.Email(),
		"-password", "secret1", "-confirm", "secret1")

	require.NoError(t, h.api.SetProductPrice(fake.DemoStoreSlug, fake.DemoHeadphonesID, decimal.NewFromInt(11)))
	_, stderr, code = h.run(append([]string{"checkout", "-place"}, address...)...)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "cart is out of date")

	require.NoError(t, h.api.SetProductPrice(fake.DemoStoreSlug, fake.DemoHeadphonesID, decimal.NewFromInt(10)))
	out = h.mustRun(append([]string{"checkout", "-place", "-shipping", "standard"}, address...)...)
	assert.Contains(t, out, "placed, total 30.91 USD")

	orders, err := h.api.Orders()
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "Ada Lovelace", orders[0].DeliveryAddress.FullName)
	assert.Equal(t, domain.OrderSourceMobile, orders[0].Source)

	assert.Contains(t, h.mustRun("cart"), "Your cart is empty")
}

func TestRun_ConfigFile(t *testing.T) {
	h := newHarness(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "api:\n  base_url: " + h.apiURL + "\ncart:\n  currency: EUR\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	var stdout, stderr bytes.Buffer
	code := cli.Run(t.Context(), []string{"-config", path, "countries"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), "Germany")

	code = cli.Run(t.Context(), []string{"-config", filepath.Join(t.TempDir(), "missing.yaml"), "countries"}, &stdout, &stderr)
	assert.Equal(t, 1, code)
}
