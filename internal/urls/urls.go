package urls

// Reference URLs for protocol documentation and troubleshooting.

// ESCLSpec is the Mopria eSCL scan protocol specification, which defines
// the ScannerCapabilities document this backend negotiates with devices.
const ESCLSpec = "https://mopria.org/spec-download"

// BonjourPrinting is Apple's Bonjour Printing specification, covering the
// "_uscan._tcp" DNS-SD service type and its TXT record keys.
const BonjourPrinting = "https://developer.apple.com/bonjour/printing-specification/"

// SANEProject is the SANE project home page, for users integrating this
// backend with the wider SANE ecosystem.
const SANEProject = "http://www.sane-project.org/"

// RFC6874 documents zone-identifier escaping in IPv6 URI literals, which
// governs how link-local device addresses are probed.
const RFC6874 = "https://www.rfc-editor.org/rfc/rfc6874"
