// Package mailer renders due staged words into a multipart message, delivers
// it through a Transport, and records the sent date back into the staging
// file the batch came from.
//
// Dispatch never returns an error: every outcome, including transport and
// persistence failures, is reported as a Status on the Result.
package mailer
