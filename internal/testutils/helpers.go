// Package testutils holds corpus fixtures shared by tests across packages.
package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// FeasibleCorpus admits "t w d" only as "the wild dog" or "the wet dog".
const FeasibleCorpus = "The weather was warm. The door was wide. The wild dog. The wet dog."

// InfeasibleCorpus has no d-word that can end a sentence after "the w...".
const InfeasibleCorpus = "The weather was warm. The door was wide."

// WriteCorpus writes text to corpus.txt in a fresh temp dir and returns its path.
func WriteCorpus(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "corpus.txt")
	require.NoError(t, os.WriteFile(path, []byte(text), 0644))
	return path
}
