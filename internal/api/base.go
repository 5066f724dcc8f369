package api

// DefaultBaseURL is the logbook web service used when none is configured.
const DefaultBaseURL = "https://pswww.slac.stanford.edu/ws-auth"
