package api

import (
	"fmt"
	"strings"
)

// facilitiesInstrument is the area that holds the shared instrument logbooks.
const facilitiesInstrument = "NEH"

// ListPostableExperiments returns every experiment the user may post to.
func (c *Client) ListPostableExperiments() ([]Experiment, error) {
	data, err := c.get("/lgbk/ws/postable_experiments")
	if err != nil {
		return nil, err
	}
	return decodeValue[[]Experiment](data)
}

// ExperimentsForInstrument returns postable experiments on the instrument,
// including the shared NEH logbooks.
func (c *Client) ExperimentsForInstrument(instrument string) ([]Experiment, error) {
	all, err := c.ListPostableExperiments()
	if err != nil {
		return nil, err
	}
	var out []Experiment
	for _, e := range all {
		if e.Instrument == instrument || e.Instrument == facilitiesInstrument {
			out = append(out, e)
		}
	}
	return out, nil
}

// ActiveExperiments returns the experiments currently active on each
// instrument station.
func (c *Client) ActiveExperiments() ([]Experiment, error) {
	data, err := c.get("/lgbk/ws/activeexperiments")
	if err != nil {
		return nil, err
	}
	return decodeValue[[]Experiment](data)
}

// CurrentExperiment returns the name of the active experiment on the
// instrument. An empty station matches any station.
func (c *Client) CurrentExperiment(instrument, station string) (string, error) {
	active, err := c.ActiveExperiments()
	if err != nil {
		return "", err
	}
	for _, e := range active {
		if e.Instrument != instrument {
			continue
		}
		if station != "" && string(e.Station) != station {
			continue
		}
		return e.Name, nil
	}
	return "", fmt.Errorf("no current experiment for %s:%s", instrument, station)
}

// FacilitiesLogbook returns the name of the shared "<INSTRUMENT> Instrument"
// logbook kept in the NEH area. Spaces and underscores compare equal.
func (c *Client) FacilitiesLogbook(instrument string) (string, error) {
	all, err := c.ListPostableExperiments()
	if err != nil {
		return "", err
	}
	want := logbookKey(instrument + " Instrument")
	for _, e := range all {
		if e.Instrument == facilitiesInstrument && logbookKey(e.Name) == want {
			return e.Name, nil
		}
	}
	return "", fmt.Errorf("no facilities logbook for %s", instrument)
}

func logbookKey(name string) string {
	return strings.ToLower(strings.Join(strings.FieldsFunc(name, func(r rune) bool {
		return r == ' ' || r == '_'
	}), " "))
}
