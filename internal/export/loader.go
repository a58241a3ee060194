// Package export reads a health export archive into the typed domain model.
package export

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"time"

	"github.com/klauspost/compress/zip"

	"example.com/healthreport/internal/domain"
)

// EntryName is the base name of the archive entry holding the export document.
const EntryName = "export.xml"

const (
	elementRecord  = "Record"
	elementWorkout = "Workout"
)

// ErrExportNotFound is returned when the archive has no export document.
var ErrExportNotFound = errors.New("export.xml not found in archive")

// Export is the parsed content of one export, in document order.
type Export struct {
	Records  []domain.Record
	Workouts []domain.Workout
}

// LoadArchiveFile opens a zip archive on disk and loads its export document.
func LoadArchiveFile(name string) (*Export, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	return OpenArchive(f, info.Size())
}

// OpenArchive locates the export document inside a zip archive and streams it through Load.
func OpenArchive(ra io.ReaderAt, size int64) (*Export, error) {
	zr, err := zip.NewReader(ra, size)
	if err != nil {
		return nil, domain.NewMalformedInput("", "", 0, fmt.Errorf("open archive: %w", err))
	}

	for _, f := range zr.File {
		if f.FileInfo().IsDir() || path.Base(f.Name) != EntryName {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, domain.NewMalformedInput("", "", 0, fmt.Errorf("open %s: %w", f.Name, err))
		}
		defer rc.Close()
		return Load(rc)
	}
	return nil, domain.NewMalformedInput("", "", 0, ErrExportNotFound)
}

// Load scans the export document once, materialising Record and Workout elements as they are met.
// Nothing else in the document is retained.
func Load(r io.Reader) (*Export, error) {
	dec := xml.NewDecoder(r)

	out := &Export{
		Records:  make([]domain.Record, 0, 1024),
		Workouts: make([]domain.Workout, 0, 64),
	}
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			line, _ := dec.InputPos()
			return nil, domain.NewMalformedInput("", "", line, err)
		}

		el, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch el.Name.Local {
		case elementRecord:
			line, _ := dec.InputPos()
			rec, err := toRecord(readAttributes(el), line)
			if err != nil {
				return nil, err
			}
			out.Records = append(out.Records, rec)
		case elementWorkout:
			line, _ := dec.InputPos()
			w, err := toWorkout(readAttributes(el), line)
			if err != nil {
				return nil, err
			}
			out.Workouts = append(out.Workouts, w)
		}
	}
}

func toRecord(a attributes, line int) (domain.Record, error) {
	typ, err := required(a, elementRecord, "type", line)
	if err != nil {
		return domain.Record{}, err
	}
	source, err := required(a, elementRecord, "sourceName", line)
	if err != nil {
		return domain.Record{}, err
	}
	start, end, err := span(a, elementRecord, line)
	if err != nil {
		return domain.Record{}, err
	}
	return domain.Record{
		Type:       typ,
		Start:      start,
		End:        end,
		Value:      a.optional("value"),
		Unit:       a.optional("unit"),
		SourceName: source,
	}, nil
}

func toWorkout(a attributes, line int) (domain.Workout, error) {
	typ, err := required(a, elementWorkout, "workoutActivityType", line)
	if err != nil {
		return domain.Workout{}, err
	}
	source, err := required(a, elementWorkout, "sourceName", line)
	if err != nil {
		return domain.Workout{}, err
	}
	start, end, err := span(a, elementWorkout, line)
	if err != nil {
		return domain.Workout{}, err
	}
	return domain.Workout{
		WorkoutType: typ,
		SourceName:  source,
		Start:       start,
		End:         end,
		Duration:    a.duration("duration", "durationUnit"),
		Distance:    a.length("totalDistance", "totalDistanceUnit"),
		Energy:      a.energy("totalEnergyBurned", "totalEnergyBurnedUnit"),
	}, nil
}

func required(a attributes, element, name string, line int) (string, error) {
	v, ok := a[name]
	if !ok {
		return "", domain.NewMalformedInput(element, name, line, errors.New("required attribute missing"))
	}
	return v, nil
}

func span(a attributes, element string, line int) (time.Time, time.Time, error) {
	rawStart, err := required(a, element, "startDate", line)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	rawEnd, err := required(a, element, "endDate", line)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start, err := ParseTimestamp(rawStart)
	if err != nil {
		return time.Time{}, time.Time{}, domain.NewMalformedInput(element, "startDate", line, err)
	}
	end, err := ParseTimestamp(rawEnd)
	if err != nil {
		return time.Time{}, time.Time{}, domain.NewMalformedInput(element, "endDate", line, err)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, domain.NewMalformedInput(element, "endDate", line, errors.New("end precedes start"))
	}
	return start, end, nil
}
