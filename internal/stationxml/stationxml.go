package stationxml

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"resprint/internal/stage"
)

type document struct {
	XMLName  xml.Name  `xml:"FDSNStationXML"`
	Networks []network `xml:"Network"`
}

type network struct {
	Stations []station `xml:"Station"`
}

type station struct {
	Channels []channel `xml:"Channel"`
}

type channel struct {
	Response *responseElement `xml:"Response"`
}

type responseElement struct {
	Stages []stageElement `xml:"Stage"`
}

type stageElement struct {
	Number       int                  `xml:"number,attr"`
	PolesZeros   *polesZerosElement   `xml:"PolesZeros"`
	Coefficients *coefficientsElement `xml:"Coefficients"`
	FIR          *firElement          `xml:"FIR"`
	Decimation   *decimationElement   `xml:"Decimation"`
	StageGain    *gainElement         `xml:"StageGain"`
}

type unitsElement struct {
	Name string `xml:"Name"`
}

type polesZerosElement struct {
	InputUnits             unitsElement  `xml:"InputUnits"`
	OutputUnits            unitsElement  `xml:"OutputUnits"`
	TransferFunctionType   string        `xml:"PzTransferFunctionType"`
	NormalizationFrequency float64       `xml:"NormalizationFrequency"`
	Zeros                  []complexPair `xml:"Zero"`
	Poles                  []complexPair `xml:"Pole"`
}

type complexPair struct {
	Real      float64 `xml:"Real"`
	Imaginary float64 `xml:"Imaginary"`
}

type coefficientsElement struct {
	InputUnits  unitsElement `xml:"InputUnits"`
	OutputUnits unitsElement `xml:"OutputUnits"`
	Numerators  []float64    `xml:"Numerator"`
}

type firElement struct {
	InputUnits  unitsElement `xml:"InputUnits"`
	OutputUnits unitsElement `xml:"OutputUnits"`
	Symmetry    string       `xml:"Symmetry"`
	Numerators  []float64    `xml:"NumeratorCoefficient"`
}

type decimationElement struct {
	Factor int `xml:"Factor"`
}

type gainElement struct {
	Value     float64 `xml:"Value"`
	Frequency float64 `xml:"Frequency"`
}

// ReadResponse parses the first channel response found in a StationXML file.
func ReadResponse(path string) (*stage.Response, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open response file: %w", err)
	}
	defer file.Close()
	resp, err := ParseResponse(file)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return resp, nil
}

// ParseResponse decodes StationXML from r and returns the stage cascade of
// the first channel carrying a response.
func ParseResponse(r io.Reader) (*stage.Response, error) {
	var doc document
	decoder := xml.NewDecoder(r)
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode StationXML: %w", err)
	}

	for _, net := range doc.Networks {
		for _, sta := range net.Stations {
			for _, cha := range sta.Channels {
				if cha.Response == nil || len(cha.Response.Stages) == 0 {
					continue
				}
				return convertResponse(cha.Response), nil
			}
		}
	}
	return nil, errors.New("no channel response found")
}

func convertResponse(resp *responseElement) *stage.Response {
	elements := make([]stageElement, len(resp.Stages))
	copy(elements, resp.Stages)
	sort.SliceStable(elements, func(i, j int) bool {
		return elements[i].Number < elements[j].Number
	})

	stages := make([]stage.Stage, 0, len(elements))
	for _, el := range elements {
		stages = append(stages, convertStage(el))
	}
	return &stage.Response{Stages: stages}
}

func convertStage(el stageElement) stage.Stage {
	var st stage.Stage

	switch {
	case el.PolesZeros != nil:
		st.Kind = stage.KindPolesZeros
		st.InputUnits = el.PolesZeros.InputUnits.Name
		st.OutputUnits = el.PolesZeros.OutputUnits.Name
		st.TransferFunction = el.PolesZeros.TransferFunctionType
		if el.PolesZeros.NormalizationFrequency != 0 {
			st.NormalizationFrequency = el.PolesZeros.NormalizationFrequency
			st.HasNormalizationFrequency = true
		}
		st.Poles = convertComplex(el.PolesZeros.Poles)
		st.Zeros = convertComplex(el.PolesZeros.Zeros)
	case el.Coefficients != nil:
		st.Kind = stage.KindCoefficients
		st.InputUnits = el.Coefficients.InputUnits.Name
		st.OutputUnits = el.Coefficients.OutputUnits.Name
		st.Coefficients = el.Coefficients.Numerators
	case el.FIR != nil:
		st.Kind = stage.KindCoefficients
		st.InputUnits = el.FIR.InputUnits.Name
		st.OutputUnits = el.FIR.OutputUnits.Name
		st.Symmetry = el.FIR.Symmetry
		st.Coefficients = el.FIR.Numerators
	default:
		st.Kind = stage.KindGeneric
	}

	if el.StageGain != nil {
		st.Gain = el.StageGain.Value
		st.HasGain = true
	}
	if el.Decimation != nil && el.Decimation.Factor != 0 {
		st.Decimation = el.Decimation.Factor
		st.HasDecimation = true
	}

	return st
}

func convertComplex(pairs []complexPair) []complex128 {
	if len(pairs) == 0 {
		return nil
	}
	values := make([]complex128, len(pairs))
	for i, p := range pairs {
		values[i] = complex(p.Real, p.Imaginary)
	}
	return values
}
