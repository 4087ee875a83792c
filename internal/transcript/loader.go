package transcript

import (
	"encoding/json"
	"fmt"
	"os"

	"callsight/internal/common"
	"callsight/pkg/errors"
)

// LoadExport reads and validates a transcript export file. A malformed file
// or a record missing its identifier fails the whole load; call-level
// aggregates cannot be trusted if part of the input was dropped.
func LoadExport(path string) (*Export, error) {
	cleaned, err := common.CleanPath(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeExportNotFound, "Invalid export path")
	}

	data, err := os.ReadFile(cleaned) // #nosec G304 - path is validated
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(err, errors.ErrCodeExportNotFound,
				fmt.Sprintf("Export file %s not found", path))
		}
		return nil, errors.Wrap(err, errors.ErrCodeFileOperation,
			fmt.Sprintf("Failed to read export file %s", path))
	}

	var export Export
	if err := json.Unmarshal(data, &export); err != nil {
		return nil, errors.ExportError(fmt.Sprintf("Export file %s is not valid JSON", path), err)
	}

	if err := validateExport(&export); err != nil {
		return nil, err
	}

	return &export, nil
}

func validateExport(export *Export) error {
	if len(export.Calls) == 0 {
		return errors.New(errors.ErrCodeExportEmpty, "Export contains no calls")
	}

	for i, call := range export.Calls {
		if call.CallID == "" {
			return errors.New(errors.ErrCodeCallMissingID,
				fmt.Sprintf("Call at index %d has no call id", i)).
				WithContext("index", i)
		}
		for j, seg := range call.Segments {
			for k, s := range seg.Sentences {
				if s.Start != nil && s.End != nil && *s.Start > *s.End {
					return errors.New(errors.ErrCodeExportMalformed,
						fmt.Sprintf("Sentence %d of segment %d in call %s starts after it ends", k, j, call.CallID)).
						WithContext("call_id", call.CallID).
						WithContext("start_ms", *s.Start).
						WithContext("end_ms", *s.End)
				}
			}
		}
	}

	for i, user := range export.Users {
		if user.ID == "" {
			return errors.New(errors.ErrCodeProfileMalformed,
				fmt.Sprintf("User profile at index %d has no id", i)).
				WithContext("index", i)
		}
	}

	return nil
}
