package gitrepo

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/gitai/internal/diff"
)

// initRepo creates a temp repository with one committed file and returns
// its root. Identity is set locally so the test never depends on the
// machine's global git config.
func initRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	run := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, "git %v: %s", args, out)
	}
	run("init")
	run("config", "user.name", "Test Author")
	run("config", "user.email", "test@example.com")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.py"), []byte("print('hi')\n"), 0o644))
	run("add", ".")
	run("commit", "-m", "initial")
	return dir
}

func TestStagedDiff(t *testing.T) {
	dir := initRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.py"), []byte("print('hello world')\n"), 0o644))

	cmd := exec.Command("git", "add", "main.py")
	cmd.Dir = dir
	require.NoError(t, cmd.Run())

	r, err := Open(dir, Options{})
	require.NoError(t, err)

	d, err := r.StagedDiff()
	require.NoError(t, err)
	require.False(t, d.Empty())

	text, err := diff.Normalize(d)
	require.NoError(t, err)
	assert.Contains(t, text, "diff --git a/main.py b/main.py")
	assert.Contains(t, text, "-1 print('hi')")
	assert.Contains(t, text, "+0 print('hello world')")
}

func TestStagedDiffNothingStaged(t *testing.T) {
	dir := initRepo(t)
	r, err := Open(dir, Options{})
	require.NoError(t, err)

	_, err = r.StagedDiff()
	assert.ErrorIs(t, err, ErrNothingStaged)
}

func TestStagedDiffNoHead(t *testing.T) {
	dir := t.TempDir()
	cmd := exec.Command("git", "init")
	cmd.Dir = dir
	require.NoError(t, cmd.Run())

	r, err := Open(dir, Options{})
	require.NoError(t, err)

	_, err = r.StagedDiff()
	assert.ErrorIs(t, err, ErrNoHead)
}

func TestStageAllThenDiff(t *testing.T) {
	dir := initRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.py"), []byte("x = 1\n"), 0o644))

	r, err := Open(dir, Options{})
	require.NoError(t, err)
	require.NoError(t, r.StageAll())

	d, err := r.StagedDiff()
	require.NoError(t, err)
	text, err := diff.Normalize(d)
	require.NoError(t, err)
	assert.Contains(t, text, "+0 x = 1")
}

func TestCommit(t *testing.T) {
	dir := initRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.py"), []byte("print('v2')\n"), 0o644))

	r, err := Open(dir, Options{UserName: "Override", UserEmail: "o@example.com"})
	require.NoError(t, err)
	require.NoError(t, r.StageAll())

	hash, err := r.Commit("Update greeting output")
	require.NoError(t, err)
	require.Len(t, hash, 40)

	show := exec.Command("git", "log", "-1", "--format=%an <%ae> %s")
	show.Dir = dir
	out, err := show.Output()
	require.NoError(t, err)
	assert.Equal(t, "Override <o@example.com> Update greeting output", string(out[:len(out)-1]))
}

func TestCommitSigningWithoutKey(t *testing.T) {
	dir := initRepo(t)
	r, err := Open(dir, Options{
		UserName: "A", UserEmail: "a@b.c",
		SignCommits: true, SigningKeyPath: filepath.Join(dir, "no-such-key.asc"),
	})
	require.NoError(t, err)

	_, err = r.Commit("msg")
	assert.ErrorIs(t, err, ErrNoSigningKey)
}

func TestPickIdentity(t *testing.T) {
	tests := []struct {
		name                string
		optName, optEmail   string
		cfgName, cfgEmail   string
		wantName, wantEmail string
	}{
		{"all_from_options", "O", "o@x", "C", "c@x", "O", "o@x"},
		{"all_from_config", "", "", "C", "c@x", "C", "c@x"},
		{"mixed", "O", "", "C", "c@x", "O", "c@x"},
		{"nothing", "", "", "", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, email := pickIdentity(tt.optName, tt.optEmail, tt.cfgName, tt.cfgEmail)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantEmail, email)
		})
	}
}

func TestLoadSigningKeyErrors(t *testing.T) {
	_, err := loadSigningKey("")
	assert.ErrorIs(t, err, ErrNoSigningKey)

	bad := filepath.Join(t.TempDir(), "key.asc")
	require.NoError(t, os.WriteFile(bad, []byte("not a key"), 0o600))
	_, err = loadSigningKey(bad)
	assert.ErrorIs(t, err, ErrNoSigningKey)
}
