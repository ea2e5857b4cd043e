// Package expiry reads product codes and expiration dates out of noisy OCR
// text and classifies expiration dates against an alert window.
//
// Everything here is a pure function of its inputs. Callers supply the
// recognized text of each captured image and, for classification, the
// current time.
package expiry
