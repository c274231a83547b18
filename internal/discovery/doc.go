// Package discovery locates EcoCharge services on the local network via mDNS.
//
// Services advertise themselves under the "_ecocharge._tcp" service type.
// A scan broadcasts mDNS queries, collects advertisements until the timeout
// elapses, and returns the endpoints found. TXT records carry extra metadata
// such as the station identifier ("station=HUB-01").
//
// Discovery requires multicast support on the network interface and that the
// service runs on the same network segment; firewalls must allow mDNS
// (UDP port 5353).
package discovery
