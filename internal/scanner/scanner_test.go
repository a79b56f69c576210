package scanner

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gasguard/internal/errors"
	"gasguard/internal/ir"
	"gasguard/internal/parser"
	"gasguard/internal/report"
	"gasguard/internal/rules"
)

const storeSource = `#[contracttype]
pub struct Store {
    pub usedVar: u64,
    pub unusedVar: u64,
    pub anotherUsed: bool,
}

#[contractimpl]
impl Store {
    pub fn get_used(&self) -> u64 {
        self.usedVar
    }

    pub fn set_another(&mut self, value: bool) {
        self.anotherUsed = value;
    }
}
`

const counterSource = `#[contracttype]
pub struct Counter {
    pub counter: u64,
    pub owner: Address,
}

#[contractimpl]
impl Counter {
    pub fn new(owner: Address) -> Self {
        Self { counter: 0, owner }
    }

    pub fn increment(&mut self) {
        self.counter += 1;
    }
}
`

const ledgerSource = `#[contracttype]
pub struct Ledger {
    pub alpha: u64,
    pub beta: u64,
    pub gamma: u64,
    pub delta: u64,
    pub epsilon: u64,
}

#[contractimpl]
impl Ledger {
    pub fn sum(&self) -> u64 {
        self.alpha + self.beta
    }
}
`

const brokenSource = `#[contracttype]
pub struct Broken {
    pub a: u64,
}

#[contractimpl]
impl Broken {
    pub fn f(&self) -> u64 {
        self.a +
    }
}
`

const vaultSource = "@external\ndef _a():\n    pass\n\n@external\ndef _b():\n    pass\n"

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func fixtureTree(t *testing.T) string {
	return writeTree(t, map[string]string{
		"a_store.rs":        storeSource,
		"b_counter.rs":      counterSource,
		"broken.rs":         brokenSource,
		"c_ledger.rs":       ledgerSource,
		"d_vault.vy":        vaultSource,
		"lib.rs":            "pub fn helper() -> u32 {\n    1\n}\n",
		"notes.txt":         "unusedVar",
		"nested/e_store.rs": storeSource,
		"target/gen.rs":     storeSource,
		".git/hook.rs":      storeSource,
	})
}

// unusedOnly narrows each engine to a single rule so violation counts are
// exact.
func unusedOnly() []Option {
	return []Option{
		WithEngine(ir.FormatSoroban, rules.NewEngine(ir.FormatSoroban, rules.NewUnusedStateVariableRule())),
		WithEngine(ir.FormatVyper, rules.NewEngine(ir.FormatVyper, rules.NewRedundantExternalDecoratorRule())),
	}
}

func sources(root string, r *report.Report) []string {
	names := make([]string, len(r.Results))
	for i, result := range r.Results {
		rel, _ := filepath.Rel(root, result.Source)
		names[i] = filepath.ToSlash(rel)
	}
	return names
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, ir.FormatSoroban, FormatFromPath("src/lib.rs"))
	assert.Equal(t, ir.FormatSoroban, FormatFromPath("LIB.RS"))
	assert.Equal(t, ir.FormatVyper, FormatFromPath("vault.vy"))
	assert.Equal(t, ir.FormatUnknown, FormatFromPath("README.md"))
	assert.Equal(t, ir.FormatUnknown, FormatFromPath("Makefile"))
	assert.False(t, Supported("notes.txt"))
}

func TestWalk(t *testing.T) {
	root := fixtureTree(t)

	paths, err := Walk(root, nil)
	require.NoError(t, err)
	rel := make([]string, len(paths))
	for i, p := range paths {
		r, _ := filepath.Rel(root, p)
		rel[i] = filepath.ToSlash(r)
	}
	assert.Equal(t, []string{
		"a_store.rs", "b_counter.rs", "broken.rs", "c_ledger.rs", "d_vault.vy", "lib.rs", "nested/e_store.rs",
	}, rel)

	t.Run("exclude", func(t *testing.T) {
		paths, err := Walk(root, []string{"nested", "*.vy", "b_*"})
		require.NoError(t, err)
		for _, p := range paths {
			assert.NotContains(t, p, "nested")
			assert.NotContains(t, p, ".vy")
			assert.NotContains(t, p, "b_counter")
		}
		assert.Len(t, paths, 4)
	})

	t.Run("missing root", func(t *testing.T) {
		_, err := Walk(filepath.Join(root, "absent"), nil)
		assert.Error(t, err)
	})
}

func TestScanDirectory(t *testing.T) {
	root := fixtureTree(t)
	s := New(append(unusedOnly(), WithWorkers(4))...)

	r, err := s.ScanDirectory(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"a_store.rs", "b_counter.rs", "broken.rs", "c_ledger.rs", "d_vault.vy", "nested/e_store.rs",
	}, sources(root, r), "walk order is kept and files without a contract are skipped")

	perFile := map[string]int{}
	for _, result := range r.Results {
		rel, _ := filepath.Rel(root, result.Source)
		perFile[filepath.ToSlash(rel)] = len(result.Violations)
	}
	assert.Equal(t, map[string]int{
		"a_store.rs":        1,
		"b_counter.rs":      0,
		"broken.rs":         0,
		"c_ledger.rs":       3,
		"d_vault.vy":        2,
		"nested/e_store.rs": 1,
	}, perFile)
	assert.Len(t, r.Violations(), 7)

	failed := r.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "broken.rs", filepath.Base(failed[0].Source))
	var grammarErr *errors.GrammarParseError
	assert.True(t, stderrors.As(failed[0].Err, &grammarErr))

	assert.Equal(t, ir.FormatVyper, r.Results[4].Format)
}

func TestScanDirectoryAggregatesPerFileCounts(t *testing.T) {
	root := fixtureTree(t)
	s := New()
	ctx := context.Background()

	r, err := s.ScanDirectory(ctx, root)
	require.NoError(t, err)

	sum := 0
	for _, result := range r.Results {
		single, _ := s.ScanFile(ctx, result.Source)
		assert.Equal(t, single.Violations, result.Violations, result.Source)
		sum += len(single.Violations)
	}
	assert.Equal(t, sum, len(r.Violations()))
	assert.Equal(t, sum, r.Counts().Total())
}

func TestScanDirectoryIsDeterministic(t *testing.T) {
	root := fixtureTree(t)
	ctx := context.Background()

	serial, err := New(WithWorkers(1)).ScanDirectory(ctx, root)
	require.NoError(t, err)
	parallel, err := New(WithWorkers(8)).ScanDirectory(ctx, root)
	require.NoError(t, err)
	again, err := New(WithWorkers(8)).ScanDirectory(ctx, root)
	require.NoError(t, err)

	assert.Equal(t, serial.Violations(), parallel.Violations())
	assert.Equal(t, parallel.Violations(), again.Violations())
	assert.Equal(t, sources(root, serial), sources(root, parallel))
}

func TestScanDirectoryCancelled(t *testing.T) {
	root := fixtureTree(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().ScanDirectory(ctx, root)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScanFile(t *testing.T) {
	root := fixtureTree(t)
	s := New(unusedOnly()...)
	ctx := context.Background()

	t.Run("violations", func(t *testing.T) {
		result, err := s.ScanFile(ctx, filepath.Join(root, "c_ledger.rs"))
		require.NoError(t, err)
		assert.Equal(t, ir.FormatSoroban, result.Format)
		assert.False(t, result.ScanTime.IsZero())
		assert.Equal(t, ledgerSource, result.Text)

		names := []string{}
		for _, v := range result.Violations {
			names = append(names, v.Subject)
		}
		assert.Equal(t, []string{"gamma", "delta", "epsilon"}, names)
	})

	t.Run("missing file", func(t *testing.T) {
		result, err := s.ScanFile(ctx, filepath.Join(root, "absent.rs"))
		var ioErr *errors.IOError
		require.True(t, stderrors.As(err, &ioErr))
		assert.True(t, result.Failed())
		assert.NotNil(t, result.Violations)
	})

	t.Run("no contract", func(t *testing.T) {
		_, err := s.ScanFile(ctx, filepath.Join(root, "lib.rs"))
		assert.ErrorIs(t, err, parser.ErrNoContract)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		result, err := s.ScanFile(ctx, filepath.Join(root, "notes.txt"))
		require.NoError(t, err)
		assert.Empty(t, result.Violations)
		assert.Equal(t, ir.FormatUnknown, result.Format)
	})
}

func TestScan(t *testing.T) {
	root := fixtureTree(t)
	s := New(unusedOnly()...)
	ctx := context.Background()

	t.Run("single file", func(t *testing.T) {
		r, err := s.Scan(ctx, filepath.Join(root, "a_store.rs"))
		require.NoError(t, err)
		require.Len(t, r.Results, 1)
		assert.Len(t, r.Violations(), 1)
	})

	t.Run("single broken file is recorded", func(t *testing.T) {
		r, err := s.Scan(ctx, filepath.Join(root, "broken.rs"))
		require.NoError(t, err)
		assert.Len(t, r.Failed(), 1)
	})

	t.Run("directory", func(t *testing.T) {
		r, err := s.Scan(ctx, root)
		require.NoError(t, err)
		assert.Len(t, r.Results, 6)
	})

	t.Run("missing path", func(t *testing.T) {
		_, err := s.Scan(ctx, filepath.Join(root, "nowhere"))
		var ioErr *errors.IOError
		assert.True(t, stderrors.As(err, &ioErr))
	})
}

func TestRecover(t *testing.T) {
	s := New()
	ctx := context.Background()

	recovered, err := s.Recover(ctx, "store.rs", storeSource)
	require.NoError(t, err)
	assert.Equal(t, "Store", recovered.Contract.Name)
	usage, ok := recovered.Usage.For("Store")
	require.True(t, ok)
	assert.True(t, usage.Uses("usedVar"))
	assert.False(t, usage.Uses("unusedVar"))

	vyper, err := s.Recover(ctx, "vault.vy", vaultSource)
	require.NoError(t, err)
	assert.Nil(t, vyper.Usage)
	assert.Len(t, vyper.Contract.Functions(), 2)

	_, err = s.Recover(ctx, "notes.txt", "")
	assert.Error(t, err)
}
