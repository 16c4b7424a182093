package repoindex

import (
	"encoding/json"
	"os"

	"github.com/deliverygov/knowledgectl/internal/errkit"
	"github.com/deliverygov/knowledgectl/internal/fsatomic"
)

// LoadIndex reads a repo_index.json, failing with missing_input if
// absent (spec §4.6 step 1: "the caller must run the indexer first").
func LoadIndex(path string) (*RepoIndex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errkit.New(errkit.ErrMissingInput, err, "repo_index.json absent; run the indexer first")
		}
		return nil, errkit.New(errkit.ErrMalformed, err, "read repo_index.json")
	}
	var idx RepoIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, errkit.New(errkit.ErrMalformed, err, "parse repo_index.json")
	}
	return &idx, nil
}

// LoadFingerprints reads a repo_fingerprints.json, failing with
// missing_input if absent.
func LoadFingerprints(path string) (*RepoFingerprints, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errkit.New(errkit.ErrMissingInput, err, "repo_fingerprints.json absent; run the indexer first")
		}
		return nil, errkit.New(errkit.ErrMalformed, err, "read repo_fingerprints.json")
	}
	var fp RepoFingerprints
	if err := json.Unmarshal(data, &fp); err != nil {
		return nil, errkit.New(errkit.ErrMalformed, err, "parse repo_fingerprints.json")
	}
	return &fp, nil
}

// Write emits repo_index.json and repo_fingerprints.json atomically
// and canonically (spec §4.3 step 5).
func Write(indexPath, fingerprintsPath string, idx *RepoIndex, fp *RepoFingerprints) error {
	idxData, err := fsatomic.Canonicalize(idx, indexPath)
	if err != nil {
		return err
	}
	fpData, err := fsatomic.Canonicalize(fp, fingerprintsPath)
	if err != nil {
		return err
	}
	if err := fsatomic.WriteFile(indexPath, idxData); err != nil {
		return err
	}
	return fsatomic.WriteFile(fingerprintsPath, fpData)
}
