package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"resprint/internal/stage"
)

// ResponseXML renders a stage cascade as a single-channel StationXML
// document, the format reference-library response files use.
func ResponseXML(stages []stage.Stage) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<FDSNStationXML schemaVersion="1.1" xmlns="http://www.fdsn.org/xml/station/1">` + "\n")
	b.WriteString(" <Network code=\"XX\">\n  <Station code=\"TEST\">\n   <Channel code=\"BHZ\" locationCode=\"\">\n    <Response>\n")
	for i, st := range stages {
		writeStageXML(&b, i+1, st)
	}
	b.WriteString("    </Response>\n   </Channel>\n  </Station>\n </Network>\n</FDSNStationXML>\n")
	return b.String()
}

func writeStageXML(b *strings.Builder, number int, st stage.Stage) {
	fmt.Fprintf(b, "     <Stage number=\"%d\">\n", number)

	switch st.Kind {
	case stage.KindPolesZeros:
		b.WriteString("      <PolesZeros>\n")
		writeUnits(b, st)
		fmt.Fprintf(b, "       <PzTransferFunctionType>%s</PzTransferFunctionType>\n", st.TransferFunction)
		if st.HasNormalizationFrequency {
			fmt.Fprintf(b, "       <NormalizationFrequency>%s</NormalizationFrequency>\n", formatNumber(st.NormalizationFrequency))
		}
		for i, z := range st.Zeros {
			fmt.Fprintf(b, "       <Zero number=\"%d\"><Real>%s</Real><Imaginary>%s</Imaginary></Zero>\n",
				i, formatNumber(real(z)), formatNumber(imag(z)))
		}
		for i, p := range st.Poles {
			fmt.Fprintf(b, "       <Pole number=\"%d\"><Real>%s</Real><Imaginary>%s</Imaginary></Pole>\n",
				i, formatNumber(real(p)), formatNumber(imag(p)))
		}
		b.WriteString("      </PolesZeros>\n")
	case stage.KindCoefficients:
		if st.Symmetry != "" {
			b.WriteString("      <FIR>\n")
			writeUnits(b, st)
			fmt.Fprintf(b, "       <Symmetry>%s</Symmetry>\n", st.Symmetry)
			for _, c := range st.Coefficients {
				fmt.Fprintf(b, "       <NumeratorCoefficient>%s</NumeratorCoefficient>\n", formatNumber(c))
			}
			b.WriteString("      </FIR>\n")
		} else {
			b.WriteString("      <Coefficients>\n")
			writeUnits(b, st)
			for _, c := range st.Coefficients {
				fmt.Fprintf(b, "       <Numerator>%s</Numerator>\n", formatNumber(c))
			}
			b.WriteString("      </Coefficients>\n")
		}
	default:
		b.WriteString("      <Coefficients>\n")
		writeUnits(b, st)
		b.WriteString("      </Coefficients>\n")
	}

	if st.HasDecimation {
		fmt.Fprintf(b, "      <Decimation><Factor>%d</Factor></Decimation>\n", st.Decimation)
	}
	if st.HasGain {
		fmt.Fprintf(b, "      <StageGain><Value>%s</Value><Frequency>0</Frequency></StageGain>\n", formatNumber(st.Gain))
	}

	b.WriteString("     </Stage>\n")
}

func writeUnits(b *strings.Builder, st stage.Stage) {
	fmt.Fprintf(b, "       <InputUnits><Name>%s</Name></InputUnits>\n", st.InputUnits)
	fmt.Fprintf(b, "       <OutputUnits><Name>%s</Name></OutputUnits>\n", st.OutputUnits)
}

func formatNumber(x float64) string {
	return strconv.FormatFloat(x, 'g', -1, 64)
}

// WriteResponseXML writes a response file into a library tree, creating
// parent directories as needed.
func WriteResponseXML(t testing.TB, path string, stages []stage.Stage) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(ResponseXML(stages)), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// DescriptorEntry is one section of a reference-library descriptor file.
type DescriptorEntry struct {
	Section     string
	XML         string
	Description string
}

// WriteDescriptor writes a sectioned descriptor .txt file mapping response
// files to human descriptions.
func WriteDescriptor(t testing.TB, path string, entries []DescriptorEntry) {
	t.Helper()
	var b strings.Builder
	b.WriteString("[Main]\nquestion = \"Which model?\"\n\n")
	for _, entry := range entries {
		fmt.Fprintf(&b, "[%s]\nxml = \"%s\"\n", entry.Section, entry.XML)
		if entry.Description != "" {
			fmt.Fprintf(&b, "description = \"%s\"\n", entry.Description)
		}
		b.WriteString("\n")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
