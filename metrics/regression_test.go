package metrics

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestMSE(t *testing.T) {
	tests := []struct {
		name      string
		yTrue     *mat.VecDense
		yPred     *mat.VecDense
		want      float64
		tolerance float64
		wantErr   bool
	}{
		{
			name:      "perfect prediction",
			yTrue:     mat.NewVecDense(5, []float64{1.0, 2.0, 3.0, 4.0, 5.0}),
			yPred:     mat.NewVecDense(5, []float64{1.0, 2.0, 3.0, 4.0, 5.0}),
			want:      0.0,
			tolerance: 1e-10,
			wantErr:   false,
		},
		{
			name:      "simple case",
			yTrue:     mat.NewVecDense(4, []float64{1.0, 2.0, 3.0, 4.0}),
			yPred:     mat.NewVecDense(4, []float64{1.5, 2.5, 2.5, 3.5}),
			want:      0.25, // ((0.5)^2 + (0.5)^2 + (-0.5)^2 + (-0.5)^2) / 4 = 1.0/4 = 0.25
			tolerance: 1e-10,
			wantErr:   false,
		},
		{
			name:      "larger errors",
			yTrue:     mat.NewVecDense(3, []float64{10.0, 20.0, 30.0}),
			yPred:     mat.NewVecDense(3, []float64{12.0, 18.0, 33.0}),
			want:      17.0 / 3.0, // ((2)^2 + (-2)^2 + (3)^2) / 3 = (4 + 4 + 9) / 3 = 17/3 ≈ 5.67
			tolerance: 1e-10,
			wantErr:   false,
		},
		{
			name:      "dimension mismatch",
			yTrue:     mat.NewVecDense(3, []float64{1.0, 2.0, 3.0}),
			yPred:     mat.NewVecDense(2, []float64{1.0, 2.0}),
			want:      0.0,
			tolerance: 1e-10,
			wantErr:   true,
		},
		{
			name:      "empty vectors",
			yTrue:     &mat.VecDense{},
			yPred:     &mat.VecDense{},
			want:      0.0,
			tolerance: 1e-10,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MSE(tt.yTrue, tt.yPred)

			if (err != nil) != tt.wantErr {
				t.Errorf("MSE() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr && math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("MSE() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRMSE(t *testing.T) {
	yTrue := mat.NewVecDense(4, []float64{1.0, 2.0, 3.0, 4.0})
	yPred := mat.NewVecDense(4, []float64{1.5, 2.5, 2.5, 3.5})

	got, err := RMSE(yTrue, yPred)
	if err != nil {
		t.Fatalf("RMSE() error = %v", err)
	}

	want := 0.5 // sqrt(0.25)
	if math.Abs(got-want) > 1e-10 {
		t.Errorf("RMSE() = %v, want %v", got, want)
	}
}

func TestMAE(t *testing.T) {
	yTrue := mat.NewVecDense(4, []float64{1.0, 2.0, 3.0, 4.0})
	yPred := mat.NewVecDense(4, []float64{2.0, 1.0, 4.0, 2.0})

	got, err := MAE(yTrue, yPred)
	if err != nil {
		t.Fatalf("MAE() error = %v", err)
	}

	want := 1.25 // (1 + 1 + 1 + 2) / 4
	if math.Abs(got-want) > 1e-10 {
		t.Errorf("MAE() = %v, want %v", got, want)
	}
}

func TestR2Score(t *testing.T) {
	t.Run("perfect prediction", func(t *testing.T) {
		yTrue := mat.NewVecDense(4, []float64{1.0, 2.0, 3.0, 4.0})
		yPred := mat.NewVecDense(4, []float64{1.0, 2.0, 3.0, 4.0})

		got, err := R2Score(yTrue, yPred)
		if err != nil {
			t.Fatalf("R2Score() error = %v", err)
		}
		if math.Abs(got-1.0) > 1e-10 {
			t.Errorf("R2Score() = %v, want 1.0", got)
		}
	})

	t.Run("mean prediction gives zero", func(t *testing.T) {
		yTrue := mat.NewVecDense(4, []float64{1.0, 2.0, 3.0, 4.0})
		yPred := mat.NewVecDense(4, []float64{2.5, 2.5, 2.5, 2.5})

		got, err := R2Score(yTrue, yPred)
		if err != nil {
			t.Fatalf("R2Score() error = %v", err)
		}
		if math.Abs(got) > 1e-10 {
			t.Errorf("R2Score() = %v, want 0.0", got)
		}
	})

	t.Run("no variance in yTrue", func(t *testing.T) {
		yTrue := mat.NewVecDense(3, []float64{2.0, 2.0, 2.0})
		yPred := mat.NewVecDense(3, []float64{1.0, 2.0, 3.0})

		if _, err := R2Score(yTrue, yPred); err == nil {
			t.Error("R2Score() expected error for constant yTrue")
		}
	})
}

func TestSquaredErrors(t *testing.T) {
	yTrue := mat.NewVecDense(3, []float64{1.0, 2.0, 3.0})
	yPred := mat.NewVecDense(3, []float64{2.0, 2.0, 5.0})

	got, err := SquaredErrors(yTrue, yPred)
	if err != nil {
		t.Fatalf("SquaredErrors() error = %v", err)
	}

	want := []float64{1.0, 0.0, 4.0}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-10 {
			t.Errorf("SquaredErrors()[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	// Mismatched lengths must fail
	if _, err := SquaredErrors(yTrue, mat.NewVecDense(2, []float64{1, 2})); err == nil {
		t.Error("SquaredErrors() expected dimension error")
	}
}
