package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stickerverse/sticker-catalog/internal/app/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeCatalog(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

func TestRootCmd_Subcommands(t *testing.T) {
	root := newRootCmd()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"dedupe", "purge", "migrate-links", "audit", "check"}, names)
}

func TestCheckCmd_EmbeddedCatalog(t *testing.T) {
	out, err := executeRoot(t, "check")
	require.NoError(t, err)
	assert.Contains(t, out, "Catalog OK")
}

func TestCheckCmd_ReportsInconsistencies(t *testing.T) {
	path := writeCatalog(t, `
categories:
  - code: POKEMON
    name: Pokemon
    subcategories:
      - code: POK-TYP
        name: Types
        groups:
          - { code: FIRE, name: Fire }
group_renames:
  TYP-WATER: WATER
`)

	out, err := executeRoot(t, "check", "--catalog", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 inconsistencies")
	assert.Contains(t, out, "group_renames target WATER is not a seeded group")
}

func TestCheckCmd_RejectsInvalidCatalog(t *testing.T) {
	path := writeCatalog(t, `
categories:
  - code: bad_code
    name: Bad
`)

	_, err := executeRoot(t, "check", "--catalog", path)
	require.Error(t, err)
}

func TestDedupeCmd_RejectsUnknownKind(t *testing.T) {
	_, err := executeRoot(t, "dedupe", "stickers")
	require.Error(t, err)
}

func TestPrintMigrateResult(t *testing.T) {
	var out bytes.Buffer
	printMigrateResult(&out, service.MigrateResult{
		Migrated:        2,
		Merged:          1,
		UnseededTargets: []string{"WATER"},
		Unnormalizable: []service.UnnormalizableLink{
			{ID: 7, StickerCode: "S1", GroupCode: "bad code!", Reason: "invalid code"},
		},
	})

	assert.Contains(t, out.String(), "Migrated 2 links, merged 1")
	assert.Contains(t, out.String(), "WATER")
	assert.Contains(t, out.String(), "skipped link 7")
}
