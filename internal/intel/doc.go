// Package intel gathers intelligence about the addresses found along a route:
// the reverse DNS name and the registration data published by the regional
// internet registries over the WHOIS protocol (TCP port 43).
//
// Lookups only ever leave the process towards the configured name server and
// a fixed set of registry servers. Referrals returned by the coordinator are
// followed once, and only when they point to one of the trusted registries.
// Every failure degrades to absent fields instead of an error.
package intel
