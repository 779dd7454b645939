package http

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// WineFeatures is the payload for POST /predict. All thirteen measurements are
// required; pointer fields distinguish an absent field from a legitimate zero.
type WineFeatures struct {
	Alcohol            *float64 `json:"alcohol" validate:"required"`
	MalicAcid          *float64 `json:"malic_acid" validate:"required"`
	Ash                *float64 `json:"ash" validate:"required"`
	AlcalinityOfAsh    *float64 `json:"alcalinity_of_ash" validate:"required"`
	Magnesium          *float64 `json:"magnesium" validate:"required"`
	TotalPhenols       *float64 `json:"total_phenols" validate:"required"`
	Flavanoids         *float64 `json:"flavanoids" validate:"required"`
	NonflavanoidPhenol *float64 `json:"nonflavanoid_phenols" validate:"required"`
	Proanthocyanins    *float64 `json:"proanthocyanins" validate:"required"`
	ColorIntensity     *float64 `json:"color_intensity" validate:"required"`
	Hue                *float64 `json:"hue" validate:"required"`
	OD280OD315         *float64 `json:"od280_od315_of_diluted_wines" validate:"required"`
	Proline            *float64 `json:"proline" validate:"required"`
}

func (f *WineFeatures) Validate() error {
	return validate.Struct(f)
}

// Vector arranges the values in the exact order the model was trained on,
// which is the column order of the bundled dataset.
func (f *WineFeatures) Vector() []float64 {
	return []float64{
		*f.Alcohol,
		*f.MalicAcid,
		*f.Ash,
		*f.AlcalinityOfAsh,
		*f.Magnesium,
		*f.TotalPhenols,
		*f.Flavanoids,
		*f.NonflavanoidPhenol,
		*f.Proanthocyanins,
		*f.ColorIntensity,
		*f.Hue,
		*f.OD280OD315,
		*f.Proline,
	}
}
