package cli

import (
	"bytes"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Makepad-fr/itemdesk/internal/devserver"
	"github.com/Makepad-fr/itemdesk/internal/logging"
)

type result struct {
	code   int
	stdout string
	stderr string
}

// cliEnv points the CLI at a fresh dev server and an empty credentials
// directory.
type cliEnv struct {
	apiURL string
	dir    string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	s := devserver.New(devserver.Options{Secret: "cli_test_secret", BcryptCost: bcrypt.MinCost, Logger: logging.Discard()})
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	t.Setenv("ITEMDESK_CREDENTIALS_DIR", dir)
	t.Setenv("ITEMDESK_TOKEN", "")
	t.Setenv("ITEMDESK_API_URL", "")
	t.Setenv("API_URL", "")
	return &cliEnv{apiURL: srv.URL + "/api", dir: dir}
}

func (e *cliEnv) run(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	var out, errw bytes.Buffer
	full := append([]string{"--api-url", e.apiURL, "--theme", "mono"}, args...)
	code := Run(full, strings.NewReader(stdin), &out, &errw)
	return result{code: code, stdout: out.String(), stderr: errw.String()}
}

func idFrom(t *testing.T, out string) string {
	t.Helper()
	i := strings.Index(out, "id: ")
	require.GreaterOrEqual(t, i, 0, "no id in %q", out)
	return strings.Fields(out[i+len("id: "):])[0]
}

func TestItemsLifecycle(t *testing.T) {
	e := newCLIEnv(t)

	r := e.run(t, "", "register", "--name", "Alice", "--email", "alice@example.org", "--password", "hunter22")
	require.Equal(t, 0, r.code, r.stderr)
	require.Contains(t, r.stdout, "Registration successful!")

	r = e.run(t, "", "login", "--email", "alice@example.org", "--password", "hunter22")
	require.Equal(t, 0, r.code, r.stderr)
	require.Contains(t, r.stdout, "Login successful!")
	require.FileExists(t, filepath.Join(e.dir, "credentials.json"))

	r = e.run(t, "", "status")
	require.Equal(t, 0, r.code)
	require.Contains(t, r.stdout, "source: file")
	require.NotContains(t, r.stdout, "(unknown)")

	r = e.run(t, "", "whoami")
	require.Equal(t, 0, r.code, r.stderr)
	require.Contains(t, r.stdout, "alice@example.org")

	r = e.run(t, "", "items", "ls")
	require.Equal(t, 0, r.code, r.stderr)
	require.Contains(t, r.stdout, "No Data Available")

	r = e.run(t, "", "items", "add", "--title", "Hi", "--description", "short one")
	require.Equal(t, 2, r.code)
	require.Contains(t, r.stderr, "Title must be at least 3 characters")

	r = e.run(t, "", "items", "add", "--title", "Groceries", "--description", "milk and eggs")
	require.Equal(t, 0, r.code, r.stderr)
	require.Contains(t, r.stdout, "Data added successfully!")
	id := idFrom(t, r.stdout)

	r = e.run(t, "", "items", "edit", id, "--title", "Weekly groceries")
	require.Equal(t, 0, r.code, r.stderr)
	require.Contains(t, r.stdout, "Data updated successfully!")

	r = e.run(t, "", "items", "ls")
	require.Equal(t, 0, r.code, r.stderr)
	require.Contains(t, r.stdout, "Weekly groceries")
	require.Contains(t, r.stdout, "milk and eggs")

	r = e.run(t, "n\n", "items", "rm", id)
	require.Equal(t, 0, r.code, r.stderr)
	require.Contains(t, r.stdout, `Are you sure you want to delete "Weekly groceries"? [y/N]`)
	require.Contains(t, r.stdout, "cancelled")
	require.Contains(t, e.run(t, "", "items", "ls").stdout, "Weekly groceries")

	r = e.run(t, "y\n", "items", "rm", id)
	require.Equal(t, 0, r.code, r.stderr)
	require.Contains(t, r.stdout, "Data deleted successfully!")
	require.Contains(t, e.run(t, "", "items", "ls").stdout, "No Data Available")

	r = e.run(t, "", "logout")
	require.Equal(t, 0, r.code)
	require.NoFileExists(t, filepath.Join(e.dir, "credentials.json"))

	r = e.run(t, "", "items", "ls")
	require.Equal(t, 2, r.code)
	require.Contains(t, r.stderr, "not logged in")
}

func TestRegisterPromptsAndRejectsDuplicate(t *testing.T) {
	e := newCLIEnv(t)

	r := e.run(t, "Bob Smith\nbob@example.org\nhunter22\n", "register")
	require.Equal(t, 0, r.code, r.stderr)
	require.Contains(t, r.stdout, "Full name: ")
	require.Contains(t, r.stdout, "Password: ")
	require.Contains(t, r.stdout, "Registration successful!")

	r = e.run(t, "", "register", "--name", "Bob Smith", "--email", "bob@example.org", "--password", "hunter22")
	require.Equal(t, 1, r.code)
	require.Contains(t, r.stderr, "Email is already registered")

	r = e.run(t, "bob@example.org\nhunter22\n", "login")
	require.Equal(t, 0, r.code, r.stderr)
	require.Contains(t, r.stdout, "Login successful!")
}

func TestLoginValidationSendsNothing(t *testing.T) {
	e := newCLIEnv(t)

	r := e.run(t, "", "login", "--email", "bad", "--password", "x")
	require.Equal(t, 2, r.code)
	require.Contains(t, r.stderr, "Email format is invalid")
	require.NoFileExists(t, filepath.Join(e.dir, "credentials.json"))
}

func TestLoginPromptsAndReportsServerMessage(t *testing.T) {
	e := newCLIEnv(t)

	r := e.run(t, "a@b.com\nsecret\n", "login")
	require.Equal(t, 1, r.code)
	require.Contains(t, r.stdout, "Email: ")
	require.Contains(t, r.stdout, "Password: ")
	require.Contains(t, r.stderr, "Invalid email or password")
}

func TestRejectedTokenReportsExpiredSession(t *testing.T) {
	e := newCLIEnv(t)
	t.Setenv("ITEMDESK_TOKEN", "bogus")

	r := e.run(t, "", "items", "ls")
	require.Equal(t, 1, r.code)
	require.Contains(t, r.stderr, "session expired, run `itemdesk login`")
}

func TestWhoamiOpaqueToken(t *testing.T) {
	e := newCLIEnv(t)
	t.Setenv("ITEMDESK_TOKEN", "Bearer abc")

	r := e.run(t, "", "whoami")
	require.Equal(t, 0, r.code)
	require.Contains(t, r.stdout, "Opaque token")
	require.Contains(t, r.stdout, "source: env")

	r = e.run(t, "", "logout")
	require.Equal(t, 0, r.code)
	require.Contains(t, r.stdout, "nothing to delete")
}

func TestUsageErrors(t *testing.T) {
	e := newCLIEnv(t)

	require.Equal(t, 2, e.run(t, "", "frobnicate").code)
	require.Equal(t, 2, e.run(t, "", "status", "--nope").code)
	require.Equal(t, 2, e.run(t, "", "items", "rm").code)
	require.Equal(t, 2, e.run(t, "", "whoami").code)

	r := e.run(t, "", "status")
	require.Equal(t, 0, r.code)
	require.Contains(t, r.stdout, "not logged in")
}

func TestConfigFileFlag(t *testing.T) {
	e := newCLIEnv(t)
	cfg := filepath.Join(t.TempDir(), "itemdesk.yml")
	require.NoError(t, os.WriteFile(cfg, []byte("api_url: ftp://nowhere\n"), 0o600))

	var out, errw bytes.Buffer
	code := Run([]string{"--config", cfg, "status"}, strings.NewReader(""), &out, &errw)
	require.Equal(t, 1, code)
	require.Contains(t, errw.String(), "unsupported scheme")

	// the flag wins over the file
	r := e.run(t, "", "--config", cfg, "status")
	require.Equal(t, 0, r.code, r.stderr)
}
