// internal/app/system/csvutil/export.go
package csvutil

import (
	"encoding/csv"
	"io"

	"github.com/dalemusser/sangathan/internal/app/policy/directorypolicy"
)

// DirectoryFilename is the download name of the directory export.
const DirectoryFilename = "ljp_members_data.csv"

// DirectoryHeader is the column order of the export.
var DirectoryHeader = []string{"Name", "Father's Name", "District", "Designation", "Jurisdiction", "Mobile", "Status"}

// WriteDirectory writes rows exactly as masked; fields the viewer may not see
// are already empty and stay empty.
func WriteDirectory(w io.Writer, rows []directorypolicy.MemberView) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(DirectoryHeader); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{r.Name, r.FatherName, r.District, r.Designation, r.Jurisdiction, r.Mobile, r.Status}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
