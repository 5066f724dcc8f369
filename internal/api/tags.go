package api

// ListTags returns the tags already used in the experiment's logbook.
func (c *Client) ListTags(experiment string) ([]string, error) {
	data, err := c.get(experimentPath(experiment, "get_elog_tags"))
	if err != nil {
		return nil, err
	}
	tags, err := decodeValue[[]string](data)
	if err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []string{}
	}
	return tags, nil
}
