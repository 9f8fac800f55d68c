// Package notifier announces newly discovered events.
//
// After each reconciliation run the events created in that run are handed to
// a Notifier. LogNotifier writes each announcement through the structured
// logger; TwitterNotifier posts one status per event using OAuth1
// credentials from the environment. Announcement failures never fail a run.
package notifier
