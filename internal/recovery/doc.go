// Package recovery reconciles persisted job state after an unclean shutdown.
//
// A job found processing at startup can have no live worker, so its status
// is a lie; error and undecodable records likewise refer to runs nobody will
// resume. The scanner wipes those records and their partial result
// artifacts, keeps clean terminal records, and retains a report of what it
// removed for a bounded interval so operators can see what a restart cost.
package recovery
