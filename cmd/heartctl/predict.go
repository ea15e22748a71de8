package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Skufu/heartcheck/internal/classifier"
	"github.com/Skufu/heartcheck/internal/heart"
	"github.com/Skufu/heartcheck/internal/predict"
	"github.com/Skufu/heartcheck/internal/report"
)

func newPredictCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict from one set of measurements and write a report",
		Example: `  heartctl predict --age 63 --sex Male --cp "Typical Angina" --trestbps 145 --chol 233 \
    --fbs Yes --restecg Normal --thalach 150 --exang No --oldpeak 2.3 \
    --slope Downsloping --ca 0 --thal "Fixed Defect"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPredict(cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.String("model", filepath.Join("models", "heart_disease_model.yaml"), "model artifact (yaml or json)")
	flags.String("out-dir", ".", "directory for the generated report")
	flags.String("format", "pdf", "report format: pdf or xlsx")
	for _, f := range heart.Fields {
		if f.Categorical() {
			flags.String(f.Key, "", fmt.Sprintf("%s (%s)", f.FormLabel, strings.Join(f.Mapping.Labels(), " | ")))
		} else {
			flags.Float64(f.Key, 0, f.FormLabel)
		}
	}
	flags.VisitAll(func(fl *pflag.Flag) {
		_ = viper.BindPFlag(fl.Name, fl)
	})
	return cmd
}

func runPredict(out io.Writer) error {
	log := logger
	if log == nil {
		log = zap.NewNop()
	}

	raw, err := rawInputFromConfig()
	if err != nil {
		return err
	}

	model, err := classifier.LoadFile(viper.GetString("model"))
	if err != nil {
		return err
	}
	dir := viper.GetString("out-dir")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create out dir: %w", err)
	}

	svc := predict.NewService(model, report.NewAssembler(dir, report.PDF{Compress: true}, report.XLSX{}), log)
	res, err := svc.Run(raw, viper.GetString("format"))
	if err != nil {
		return err
	}
	log.Info("report written", zap.String("model", model.Name()), zap.String("path", res.Path))

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Feature\tValue")
	for _, row := range res.Table {
		fmt.Fprintf(tw, "%s\t%s\n", row.Feature, row.Value)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nPrediction: %s\nConfidence: %s\nReport: %s\n", res.Prediction, res.Confidence, res.Path)
	return nil
}

// rawInputFromConfig reads the 13 measurements from flags, env or config
// file. Every one must be set explicitly.
func rawInputFromConfig() (heart.RawInput, error) {
	var missing []string
	for _, f := range heart.Fields {
		if !viper.IsSet(f.Key) {
			missing = append(missing, f.Key)
		}
	}
	if len(missing) > 0 {
		return heart.RawInput{}, fmt.Errorf("missing measurements: %s", strings.Join(missing, ", "))
	}

	return heart.RawInput{
		Age:                  viper.GetFloat64("age"),
		Sex:                  viper.GetString("sex"),
		ChestPainType:        viper.GetString("cp"),
		RestingBloodPressure: viper.GetFloat64("trestbps"),
		Cholesterol:          viper.GetFloat64("chol"),
		FastingBloodSugar:    viper.GetString("fbs"),
		RestingECG:           viper.GetString("restecg"),
		MaxHeartRate:         viper.GetFloat64("thalach"),
		ExerciseAngina:       viper.GetString("exang"),
		Oldpeak:              viper.GetFloat64("oldpeak"),
		Slope:                viper.GetString("slope"),
		MajorVessels:         viper.GetFloat64("ca"),
		Thal:                 viper.GetString("thal"),
	}, nil
}
