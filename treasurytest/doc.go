/*
Package treasurytest provides mocks and helpers for testing the treasury
packages. Structures implemented here are intended to be used instead of
custom implementations created for each test separately.
*/
package treasurytest
