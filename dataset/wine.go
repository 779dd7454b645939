package dataset

import (
	_ "embed"
	"encoding/csv"
	"math"
	"math/rand"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"gonum.org/v1/gonum/mat"
)

//go:embed wine.csv
var wineCSV string

const (
	NumFeatures = 13
	NumClasses  = 3
)

func FeatureNames() []string {
	return []string{
		"alcohol",
		"malic_acid",
		"ash",
		"alcalinity_of_ash",
		"magnesium",
		"total_phenols",
		"flavanoids",
		"nonflavanoid_phenols",
		"proanthocyanins",
		"color_intensity",
		"hue",
		"od280_od315_of_diluted_wines",
		"proline",
	}
}

// Load parses the bundled wine table into a sample matrix and label vector.
// The column order of the table is the canonical feature order; the header is
// checked against FeatureNames so a reordered asset cannot slip through.
func Load() (*mat.Dense, []int, error) {
	records, err := csv.NewReader(strings.NewReader(wineCSV)).ReadAll()
	if err != nil {
		return nil, nil, errors.Wrap(err, "parse bundled wine table")
	}
	if len(records) < 2 {
		return nil, nil, errors.New("bundled wine table is empty")
	}

	header := records[0]
	names := FeatureNames()
	if len(header) != NumFeatures+1 {
		return nil, nil, errors.Newf("expected %d columns, got %d", NumFeatures+1, len(header))
	}
	for j, name := range names {
		if header[j] != name {
			return nil, nil, errors.Newf("column %d is %q, expected %q", j, header[j], name)
		}
	}

	rows := records[1:]
	samples := mat.NewDense(len(rows), NumFeatures, nil)
	labels := make([]int, len(rows))
	for i, row := range rows {
		if len(row) != NumFeatures+1 {
			return nil, nil, errors.Newf("row %d has %d columns", i+1, len(row))
		}
		for j := 0; j < NumFeatures; j++ {
			value, err := strconv.ParseFloat(row[j], 64)
			if err != nil {
				return nil, nil, errors.Wrapf(err, "row %d column %s", i+1, names[j])
			}
			samples.Set(i, j, value)
		}
		label, err := strconv.Atoi(row[NumFeatures])
		if err != nil || label < 0 || label >= NumClasses {
			return nil, nil, errors.Newf("row %d has invalid label %q", i+1, row[NumFeatures])
		}
		labels[i] = label
	}
	return samples, labels, nil
}

// Split shuffles the samples with the given seed and carves off testRatio of
// them as the held-out partition. The same seed always produces the same split.
func Split(samples *mat.Dense, labels []int, testRatio float64, seed int64) (trainX *mat.Dense, trainY []int, testX *mat.Dense, testY []int) {
	if testRatio <= 0 || testRatio >= 1 {
		testRatio = 0.2
	}
	n, cols := samples.Dims()
	rnd := rand.New(rand.NewSource(seed))
	indices := rnd.Perm(n)

	split := int(math.Round(float64(n) * (1 - testRatio)))
	trainX = mat.NewDense(split, cols, nil)
	testX = mat.NewDense(n-split, cols, nil)
	trainY = make([]int, split)
	testY = make([]int, n-split)
	for i, idx := range indices {
		if i < split {
			trainX.SetRow(i, samples.RawRowView(idx))
			trainY[i] = labels[idx]
		} else {
			testX.SetRow(i-split, samples.RawRowView(idx))
			testY[i-split] = labels[idx]
		}
	}
	return trainX, trainY, testX, testY
}
