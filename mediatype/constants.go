package mediatype

const (
	AllValue                       = "*/*"
	ApplicationAtomXMLValue        = "application/atom+xml"
	ApplicationFormURLEncodedValue = "application/x-www-form-urlencoded"
	ApplicationJSONValue           = "application/json"
	ApplicationJSONUTF8Value       = ApplicationJSONValue + ";charset=UTF-8"
	ApplicationOctetStreamValue    = "application/octet-stream"
	ApplicationPDFValue            = "application/pdf"
	ApplicationXHTMLXMLValue       = "application/xhtml+xml"
	ApplicationXMLValue            = "application/xml"
	ImageGIFValue                  = "image/gif"
	ImageJPEGValue                 = "image/jpeg"
	ImagePNGValue                  = "image/png"
	MultipartFormDataValue         = "multipart/form-data"
	TextHTMLValue                  = "text/html"
	TextMarkdownValue              = "text/markdown"
	TextPlainValue                 = "text/plain"
	TextXMLValue                   = "text/xml"
)

var (
	All                       = MustParse(AllValue)
	ApplicationAtomXML        = MustParse(ApplicationAtomXMLValue)
	ApplicationFormURLEncoded = MustParse(ApplicationFormURLEncodedValue)
	ApplicationJSON           = MustParse(ApplicationJSONValue)
	ApplicationJSONUTF8       = MustParse(ApplicationJSONUTF8Value)
	ApplicationOctetStream    = MustParse(ApplicationOctetStreamValue)
	ApplicationPDF            = MustParse(ApplicationPDFValue)
	ApplicationXHTMLXML       = MustParse(ApplicationXHTMLXMLValue)
	ApplicationXML            = MustParse(ApplicationXMLValue)
	ImageGIF                  = MustParse(ImageGIFValue)
	ImageJPEG                 = MustParse(ImageJPEGValue)
	ImagePNG                  = MustParse(ImagePNGValue)
	MultipartFormData         = MustParse(MultipartFormDataValue)
	TextHTML                  = MustParse(TextHTMLValue)
	TextMarkdown              = MustParse(TextMarkdownValue)
	TextPlain                 = MustParse(TextPlainValue)
	TextXML                   = MustParse(TextXMLValue)
)
