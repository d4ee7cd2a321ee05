package main

import (
	"flag"
	"os"

	"call-insights-go/internal/dataset"
	"call-insights-go/internal/eval"
	"call-insights-go/internal/export"
	"call-insights-go/internal/logger"
)

// evaluate scores the system against a human-reviewed sample: label agreement
// for the four sentiment dimensions, and word error rate for transcripts.
func main() {
	labelsPath := flag.String("labels", "", "review workbook with human and model label columns")
	labelsOut := flag.String("labels-out", "evaluation_results.xlsx", "output workbook for label metrics")
	transcriptsPath := flag.String("transcripts", "", "workbook with reference and automatic transcript columns")
	transcriptsOut := flag.String("transcripts-out", "wer_results.xlsx", "output workbook for transcript metrics")
	flag.Parse()

	log := logger.New()
	if *labelsPath == "" && *transcriptsPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	if *labelsPath != "" {
		pairs, err := dataset.LoadLabels(*labelsPath)
		if err != nil {
			log.WithError(err).Fatal("failed to load label workbook")
		}
		results, err := eval.EvaluateDimensions(pairs)
		if err != nil {
			log.WithError(err).Fatal("label evaluation failed")
		}
		for dim, m := range results {
			log.WithField("dimension", dim).
				WithField("n", m.TotalSamples).
				WithField("accuracy", m.Accuracy).
				WithField("f1_macro", m.F1Macro).
				Info("dimension scored")
		}
		if err := export.WriteEvaluation(*labelsOut, results); err != nil {
			log.WithError(err).Fatal("failed to write evaluation workbook")
		}
		log.WithField("path", *labelsOut).Info("label metrics written")
	}

	if *transcriptsPath != "" {
		pairs, err := dataset.LoadTranscriptPairs(*transcriptsPath)
		if err != nil {
			log.WithError(err).Fatal("failed to load transcript workbook")
		}
		var rows []export.WERRow
		for _, p := range pairs {
			res, err := eval.WER(p.Reference, p.Hypothesis)
			if err != nil {
				log.WithCall(p.CallID).WithError(err).Warn("skipping transcript pair")
				continue
			}
			rows = append(rows, export.WERRow{CallID: p.CallID, Result: res})
		}
		if err := export.WriteWERReport(*transcriptsOut, rows); err != nil {
			log.WithError(err).Fatal("failed to write wer workbook")
		}
		log.WithField("path", *transcriptsOut).
			WithField("transcripts", len(rows)).
			Info("transcript metrics written")
	}
}
